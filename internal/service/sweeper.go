package service

import (
	"context"

	"github.com/careconnect/caregiver-booking/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScheduleSweeper registers the expiry sweep on the given cron runner,
// once a minute. Sweeping only refreshes the persisted AvailableSpots column;
// availability reads stay correct without it.
func ScheduleSweeper(c *cron.Cron, svc ReservationService) error {
	_, err := c.AddFunc("* * * * *", func() {
		if _, err := svc.CleanupExpiredReservations(context.Background()); err != nil {
			logger.Get().Error("reservation sweep failed", zap.Error(err))
		}
	})
	return err
}
