package consumer

import (
	"encoding/json"

	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountEvent mirrors the accounts service's user.* payload.
type accountEvent struct {
	User    models.User              `json:"user"`
	Profile *models.CaregiverProfile `json:"caregiver_profile,omitempty"`
}

type AccountConsumer struct {
	db *gorm.DB
}

func NewAccountConsumer(db *gorm.DB) *AccountConsumer {
	return &AccountConsumer{db: db}
}

// Start listens for account events and upserts the local user/profile copy.
func (ac *AccountConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ac.handleMessage(msg)
		}
		logger.Get().Info("account event channel closed, stopping consumer")
	}()
}

func (ac *AccountConsumer) handleMessage(msg amqp.Delivery) {
	var event accountEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.Get().Warn("failed to unmarshal account event", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	// Upsert: insert or update on conflict (same ID from the accounts service)
	result := ac.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "updated_at"}),
	}).Create(&event.User)
	if result.Error != nil {
		logger.Get().Error("failed to upsert user",
			zap.String("user_id", event.User.ID), zap.Error(result.Error))
		msg.Nack(false, true) // requeue
		return
	}

	if event.Profile != nil {
		result = ac.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"daily_capacity", "hourly_rate", "dynamic_pricing_enabled", "timezone", "updated_at"}),
		}).Create(event.Profile)
		if result.Error != nil {
			logger.Get().Error("failed to upsert caregiver profile",
				zap.String("user_id", event.User.ID), zap.Error(result.Error))
			msg.Nack(false, true)
			return
		}
	}

	logger.Get().Debug("synced account", zap.String("user_id", event.User.ID))
	msg.Ack(false)
}
