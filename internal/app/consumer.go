package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-leave/internal/config"
	"go-leave/internal/events"
	"go-leave/internal/holiday"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka/consumer"
	"go-leave/internal/shared/connection"
	"go-leave/internal/user"

	"go.uber.org/zap"
)

func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if err := cfg.RequireKafka(); err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	cascade := leave.NewCascade(
		sqlDB,
		leave.NewRepository(gormDB),
		user.NewRepository(gormDB),
		holiday.NewRepository(gormDB),
	)

	reader := connection.NewKafkaReader(cfg.Kafka.Broker, events.HolidayDateChangedTopic, cfg.Kafka.ConsumerGroup)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeHolidayDateChanged(ctx, reader, cascade, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
