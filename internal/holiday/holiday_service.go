package holiday

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go-leave/internal/domain"
	"go-leave/internal/events"
	holidayerrors "go-leave/internal/holiday/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/calendar"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/dbtx"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	HolidayListCacheKey = "holidays:all"
	uniqueDateName      = "uq_public_holidays_date_name"
	minNameLength       = 3
	maxNameLength       = 120 // public_holidays.name VARCHAR(120)
)

// DateChangedHook runs after a holiday lands on a date, either because it
// was created or because its date moved. It is called after commit.
type DateChangedHook interface {
	OnHolidayDateChanged(ctx context.Context, date time.Time) (int, error)
}

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context) ([]HolidayResponse, error)
	Create(ctx context.Context, actor domain.Actor, req CreateHolidayRequest) (MutationResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateHolidayRequest) (MutationResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	rdb      *redis.Client
	hook     DateChangedHook
	cacheTTL time.Duration
	sf       *singleflight.Group
	logger   *zap.Logger
}

type Option func(*service)

func WithOutbox(outbox kafka.OutboxRepository) Option {
	return func(s *service) { s.outbox = outbox }
}

func WithCache(rdb *redis.Client, ttl time.Duration) Option {
	return func(s *service) {
		s.rdb = rdb
		s.cacheTTL = ttl
	}
}

func WithDateChangedHook(hook DateChangedHook) Option {
	return func(s *service) { s.hook = hook }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger.Named("holiday.service")
		}
	}
}

func NewService(db *sql.DB, repo Repository, opts ...Option) Service {
	s := &service{
		db:       db,
		repo:     repo,
		cacheTTL: time.Hour,
		sf:       &singleflight.Group{},
		logger:   zap.L().Named("holiday.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetAll(ctx context.Context) ([]HolidayResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, HolidayListCacheKey).Result()
		if err == nil {
			var resp []HolidayResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
			l.Warn("holiday cache entry unreadable, reloading")
		} else if err != redis.Nil {
			l.Warn("holiday cache read failed", zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(HolidayListCacheKey, func() (any, error) {
		holidays, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := make([]HolidayResponse, len(holidays))
		for i, h := range holidays {
			resp[i] = mapToResponse(h)
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, HolidayListCacheKey, string(payload), s.cacheTTL).Err(); err != nil {
					l.Warn("holiday cache write failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		l.Error("list holidays failed", zap.Error(err))
		return nil, apperror.StoreUnavailable(err)
	}
	return v.([]HolidayResponse), nil
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateHolidayRequest) (MutationResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	name := strings.TrimSpace(req.Name)
	if strings.TrimSpace(req.Date) == "" || name == "" {
		return MutationResponse{}, holidayerrors.ErrMissingFields
	}
	if err := checkName(name); err != nil {
		return MutationResponse{}, err
	}
	date, err := parseFutureDay(req.Date)
	if err != nil {
		return MutationResponse{}, err
	}

	h := &PublicHoliday{
		ID:        uuid.New(),
		Date:      date,
		Name:      name,
		CreatedBy: actor.ID,
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)

		exists, err := qtx.ExistsByDateName(ctx, date, name, nil)
		if err != nil {
			return apperror.StoreUnavailable(err)
		}
		if exists {
			return holidayerrors.ErrDuplicateHoliday
		}

		if err := qtx.Create(ctx, h); err != nil {
			if dbtx.IsUniqueViolation(err, uniqueDateName) {
				return holidayerrors.ErrDuplicateHoliday
			}
			return apperror.StoreUnavailable(err)
		}

		return s.queueDateChanged(ctx, tx, h, "")
	})
	if err != nil {
		l.Warn("create holiday failed", zap.String("date", req.Date), zap.Error(err))
		return MutationResponse{}, err
	}

	l.Info("holiday created",
		zap.String("holiday_id", h.ID.String()),
		zap.String("date", calendar.Format(date)),
		zap.String("created_by", actor.ID.String()),
	)
	s.invalidateCache(ctx)

	return MutationResponse{
		HolidayResponse: mapToResponse(*h),
		RejectedLeaves:  s.runHook(ctx, date),
	}, nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateHolidayRequest) (MutationResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	hid, err := uuid.Parse(id)
	if err != nil {
		return MutationResponse{}, holidayerrors.ErrInvalidHolidayID
	}
	if req.Date == nil && req.Name == nil {
		return MutationResponse{}, holidayerrors.ErrEmptyUpdate
	}

	var newName string
	if req.Name != nil {
		newName = strings.TrimSpace(*req.Name)
		if err := checkName(newName); err != nil {
			return MutationResponse{}, err
		}
	}
	var newDate time.Time
	if req.Date != nil {
		newDate, err = parseFutureDay(*req.Date)
		if err != nil {
			return MutationResponse{}, err
		}
	}

	var (
		h           *PublicHoliday
		previous    time.Time
		dateChanged bool
	)
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)

		current, err := qtx.FindByID(ctx, hid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return holidayerrors.ErrHolidayNotFound
			}
			return apperror.StoreUnavailable(err)
		}
		h = current
		previous = calendar.Normalize(h.Date)
		h.Date = previous

		if req.Name != nil {
			h.Name = newName
		}
		if req.Date != nil {
			dateChanged = !newDate.Equal(previous)
			h.Date = newDate
		}

		exists, err := qtx.ExistsByDateName(ctx, h.Date, h.Name, &h.ID)
		if err != nil {
			return apperror.StoreUnavailable(err)
		}
		if exists {
			return holidayerrors.ErrDuplicateHoliday
		}

		if err := qtx.Update(ctx, h); err != nil {
			if dbtx.IsUniqueViolation(err, uniqueDateName) {
				return holidayerrors.ErrDuplicateHoliday
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return holidayerrors.ErrHolidayNotFound
			}
			return apperror.StoreUnavailable(err)
		}

		if !dateChanged {
			return nil
		}
		return s.queueDateChanged(ctx, tx, h, calendar.Format(previous))
	})
	if err != nil {
		l.Warn("update holiday failed", zap.String("holiday_id", id), zap.Error(err))
		return MutationResponse{}, err
	}

	l.Info("holiday updated",
		zap.String("holiday_id", id),
		zap.Bool("date_changed", dateChanged),
		zap.String("updated_by", actor.ID.String()),
	)
	s.invalidateCache(ctx)

	resp := MutationResponse{HolidayResponse: mapToResponse(*h)}
	if dateChanged {
		resp.RejectedLeaves = s.runHook(ctx, h.Date)
	}
	return resp, nil
}

// Delete removes the holiday. Leave already rejected because of it stays
// rejected.
func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	l := contextutil.GetLogger(ctx, s.logger)

	hid, err := uuid.Parse(id)
	if err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}

	if err := s.repo.Delete(ctx, hid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return holidayerrors.ErrHolidayNotFound
		}
		l.Error("delete holiday failed", zap.String("holiday_id", id), zap.Error(err))
		return apperror.StoreUnavailable(err)
	}

	l.Info("holiday deleted", zap.String("holiday_id", id), zap.String("deleted_by", actor.ID.String()))
	s.invalidateCache(ctx)
	return nil
}

func (s *service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.StoreUnavailable(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperror.StoreUnavailable(err)
	}
	return nil
}

func (s *service) queueDateChanged(ctx context.Context, tx *sql.Tx, h *PublicHoliday, previousDate string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	payload, err := json.Marshal(events.HolidayDateChangedEvent{
		EventType:    events.HolidayDateChangedType,
		RequestID:    rid,
		HolidayID:    h.ID.String(),
		Date:         calendar.Format(h.Date),
		PreviousDate: previousDate,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "holiday",
		AggregateID:   h.ID.String(),
		EventType:     events.HolidayDateChangedType,
		Topic:         events.HolidayDateChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	return apperror.StoreUnavailable(err)
}

// runHook applies the cascade after commit. A failure here does not undo the
// holiday write; the outbox consumer and the periodic sweep retry it.
func (s *service) runHook(ctx context.Context, date time.Time) int {
	if s.hook == nil {
		return 0
	}
	l := contextutil.GetLogger(ctx, s.logger)

	n, err := s.hook.OnHolidayDateChanged(ctx, date)
	if err != nil {
		l.Error("holiday cascade failed after commit",
			zap.String("date", calendar.Format(date)),
			zap.Error(err),
		)
		return 0
	}
	return n
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, HolidayListCacheKey).Err(); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("failed to invalidate holiday cache",
			zap.String("key", HolidayListCacheKey),
			zap.Error(err),
		)
	}
}

func checkName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minNameLength {
		return holidayerrors.ErrNameTooShort
	}
	if n > maxNameLength {
		return holidayerrors.ErrNameTooLong
	}
	return nil
}

func parseFutureDay(s string) (time.Time, error) {
	date, err := calendar.ParseDay(s)
	if err != nil {
		return time.Time{}, holidayerrors.ErrInvalidDateFormat
	}
	if date.Before(calendar.Today()) {
		return time.Time{}, holidayerrors.ErrPastDate
	}
	return date, nil
}
