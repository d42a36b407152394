package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/events"
	"go-fleetpay/internal/messaging/kafka"
	"go-fleetpay/internal/messaging/kafka/consumer"
	"go-fleetpay/internal/payroll"
	"go-fleetpay/internal/rate"
	"go-fleetpay/internal/shared/config"
	"go-fleetpay/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	payrollService := payroll.NewService(payroll.Deps{
		DB:       gormDB,
		Repo:     payroll.NewRepository(gormDB),
		Rates:    rate.NewRepository(gormDB),
		Outbox:   kafka.NewOutboxRepository(gormDB),
		Recorder: activity.NewRecorder(activity.NewRepository(gormDB), logger),
		Defaults: payroll.Defaults{
			DriverFee: cfg.Payroll.DefaultDriverFee,
			HelperFee: cfg.Payroll.DefaultHelperFee,
		},
		Location: cfg.App.Timezone,
	}, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.ShipmentCompletedTopic,
		GroupID:        cfg.Kafka.GroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeShipmentCompleted(ctx, reader, payrollService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
