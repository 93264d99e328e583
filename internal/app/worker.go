package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-leave/internal/accrual"
	"go-leave/internal/config"
	"go-leave/internal/holiday"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/messaging/kafka/producer"
	"go-leave/internal/shared/connection"
	"go-leave/internal/user"

	"go.uber.org/zap"
)

// HolidaySweeper re-applies every current and future holiday to approved
// leave.
type HolidaySweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// RunWorker hosts the background jobs: outbox publishing (when a broker is
// configured), the monthly accrual scheduler and the holiday sweep.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	in, err := connectInfra(cfg, logger)
	if err != nil {
		return err
	}
	defer in.Close()

	userRepo := user.NewRepository(in.GormDB)
	holidayRepo := holiday.NewRepository(in.GormDB)
	cascade := leave.NewCascade(in.SQLDB, leave.NewRepository(in.GormDB), userRepo, holidayRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kafka.Broker != "" {
		kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, 5, logger)
		if err != nil {
			return err
		}
		defer kafkaWriter.Close()

		go producer.ProcessOutboxEvents(
			ctx,
			kafka.NewOutboxRepository(in.SQLDB),
			kafkaWriter,
			logger,
			cfg.Worker.OutboxPollInterval,
		)
	} else {
		logger.Warn("KAFKA_BROKER not set, outbox events stay queued")
	}

	scheduler := accrual.NewScheduler(
		accrual.NewService(userRepo, in.Redis, cfg.Leave.AccrualDays),
		cfg.Worker.AccrualCheckInterval,
	)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go RunHolidaySweep(ctx, cascade, cfg.Worker.HolidaySweepInterval, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

// RunHolidaySweep repairs cascades missed by a failed post-commit hook or an
// undelivered event. It runs once per interval until ctx is cancelled.
func RunHolidaySweep(ctx context.Context, sweeper HolidaySweeper, interval time.Duration, logger *zap.Logger) {
	log := logger.Named("holiday.sweep")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("holiday sweep stopped")
			return
		case <-ticker.C:
			rejected, err := sweeper.Sweep(ctx)
			if err != nil {
				log.Error("holiday sweep failed", zap.Int("rejected", rejected), zap.Error(err))
				continue
			}
			if rejected > 0 {
				log.Info("holiday sweep rejected approved leave", zap.Int("rejected", rejected))
			}
		}
	}
}
