package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/shared/calendar"
	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
)

// HolidayCascade re-applies a holiday to approved leave spanning its date.
type HolidayCascade interface {
	OnHolidayDateChanged(ctx context.Context, date time.Time) (int, error)
}

const (
	cascadeAttempts = 3
	cascadeBackoff  = 100 * time.Millisecond
)

// ConsumeHolidayDateChanged runs the cascade for every delivered
// holiday_date_changed event. Undecodable messages are committed and
// skipped. A cascade that still fails after cascadeAttempts tries is also
// committed: the reader has already moved past it, so the worker's holiday
// sweep is what re-applies that date.
func ConsumeHolidayDateChanged(
	ctx context.Context,
	reader MessageReader,
	cascade HolidayCascade,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.holiday_date_changed")
	log.Info("holiday date changed consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("holiday date changed consumer stopped")
				return
			}
			log.Error("fetch holiday date changed message failed", zap.Error(err))
			continue
		}

		var event events.HolidayDateChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode holiday date changed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		date, err := calendar.ParseDay(event.Date)
		if err != nil {
			log.Error("holiday date changed event carries invalid date",
				zap.String("holiday_id", event.HolidayID),
				zap.String("date", event.Date),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		rid := event.RequestID
		if rid == "" {
			rid = header(msg, "request_id")
		}
		evLog := log.With(zap.String("request_id", rid), zap.String("holiday_id", event.HolidayID))
		evCtx := contextutil.WithLogger(contextutil.WithRequestID(ctx, rid), evLog)

		affected, err := runCascade(evCtx, cascade, date, evLog)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("holiday date changed consumer stopped")
				return
			}
			evLog.Error("holiday cascade failed, left to the holiday sweep",
				zap.String("date", event.Date),
				zap.Int("attempts", cascadeAttempts),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			evLog.Error("commit holiday date changed message failed", zap.Error(err))
			continue
		}

		evLog.Info("holiday cascade applied from event",
			zap.String("date", event.Date),
			zap.Int("rejected_leaves", affected),
		)
	}
}

func runCascade(ctx context.Context, cascade HolidayCascade, date time.Time, log *zap.Logger) (int, error) {
	var err error
	for attempt := 1; attempt <= cascadeAttempts; attempt++ {
		var affected int
		affected, err = cascade.OnHolidayDateChanged(ctx, date)
		if err == nil {
			return affected, nil
		}
		if attempt == cascadeAttempts {
			break
		}
		log.Warn("holiday cascade attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Duration(attempt) * cascadeBackoff):
		}
	}
	return 0, err
}
