package main

import (
	"github.com/careconnect/caregiver-booking/config"
	"github.com/careconnect/caregiver-booking/internal/consumer"
	"github.com/careconnect/caregiver-booking/internal/handler"
	"github.com/careconnect/caregiver-booking/internal/middleware"
	"github.com/careconnect/caregiver-booking/internal/repository"
	"github.com/careconnect/caregiver-booking/internal/service"
	"github.com/careconnect/caregiver-booking/pkg/database"
	"github.com/careconnect/caregiver-booking/pkg/logger"
	"github.com/careconnect/caregiver-booking/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	logger.Init()
	log := logger.Get()
	defer log.Sync()

	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ: sync caregiver accounts in, publish booking events out.
	// Messaging is a best-effort collaborator; the engine runs without it.
	var publisher *rabbitmq.Publisher
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Warn("rabbitmq unavailable, running without messaging", zap.Error(err))
	} else {
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatal("failed to start consuming account events", zap.Error(err))
		}
		consumer.NewAccountConsumer(db).Start(msgs)

		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatal("failed to create booking event publisher", zap.Error(err))
		}
		defer publisher.Close()
	}

	// Repositories
	slotRepo := repository.NewSlotRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	slotSvc := service.NewSlotService(slotRepo, bookingRepo, userRepo)
	reservationSvc := service.NewReservationService(reservationRepo, slotRepo, userRepo, cfg.HoldTTL)
	availabilitySvc := service.NewAvailabilityService(slotRepo, reservationRepo)
	pricingSvc := service.NewPricingService(slotRepo, userRepo)

	var bookingSvc service.BookingService
	if publisher != nil {
		bookingSvc = service.NewBookingService(bookingRepo, reservationRepo, slotRepo, userRepo, publisher)
	} else {
		bookingSvc = service.NewBookingService(bookingRepo, reservationRepo, slotRepo, userRepo, nil)
	}

	// Expiry sweeper, once a minute
	if !cfg.SweepDisabled {
		c := cron.New()
		if err := service.ScheduleSweeper(c, reservationSvc); err != nil {
			log.Fatal("failed to schedule reservation sweeper", zap.Error(err))
		}
		c.Start()
		defer c.Stop()
	}

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "caregiver-booking"})
	})

	handler.NewSlotHandler(slotSvc, availabilitySvc, pricingSvc).RegisterRoutes(e)
	handler.NewReservationHandler(reservationSvc, bookingSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)

	log.Info("caregiver booking service starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
