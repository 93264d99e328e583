package leave

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/calendar"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=leave_cascade.go -destination=mock/leave_cascade_mock.go -package=mock

// HolidayDates lists the holiday dates a sweep has to re-apply.
type HolidayDates interface {
	FindDatesFrom(ctx context.Context, from time.Time) ([]time.Time, error)
}

// Cascade rejects approved leave that a holiday now falls into and refunds
// the applicants. Running it twice for the same date is a no-op.
type Cascade struct {
	db     *sql.DB
	repo   Repository
	users  user.Repository
	dates  HolidayDates
	now    func() time.Time
	logger *zap.Logger
}

func NewCascade(db *sql.DB, repo Repository, users user.Repository, dates HolidayDates, logger ...*zap.Logger) *Cascade {
	l := zap.L().Named("leave.cascade")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.cascade")
	}
	return &Cascade{
		db:     db,
		repo:   repo,
		users:  users,
		dates:  dates,
		now:    func() time.Time { return time.Now().UTC() },
		logger: l,
	}
}

func CascadeReason(day time.Time) string {
	return fmt.Sprintf("Automatically rejected: public holiday declared on %s", calendar.Format(day))
}

// OnHolidayDateChanged returns how many leaves were rejected.
func (c *Cascade) OnHolidayDateChanged(ctx context.Context, date time.Time) (int, error) {
	log := contextutil.GetLogger(ctx, c.logger)
	day := calendar.Normalize(date)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("cascade begin tx failed", zap.Error(err))
		return 0, apperror.StoreUnavailable(err)
	}
	defer tx.Rollback()

	qtx := c.repo.WithTx(tx)
	utx := c.users.WithTx(tx)

	leaves, err := qtx.FindApprovedSpanning(ctx, day)
	if err != nil {
		log.Error("cascade find approved leave failed", zap.Error(err))
		return 0, apperror.StoreUnavailable(err)
	}
	if len(leaves) == 0 {
		return 0, nil
	}

	credits := make(map[uuid.UUID]int, len(leaves))
	ids := make([]uuid.UUID, 0, len(leaves))
	for _, l := range leaves {
		if _, ok := credits[l.ApplicantID]; !ok {
			ids = append(ids, l.ApplicantID)
		}
		credits[l.ApplicantID] += l.WorkingDays
	}

	applicants, err := utx.FindByIDs(ctx, ids)
	if err != nil {
		log.Error("cascade load applicants failed", zap.Error(err))
		return 0, apperror.StoreUnavailable(err)
	}
	roles := make(map[uuid.UUID]domain.Role, len(applicants))
	for _, u := range applicants {
		roles[u.ID] = u.Role
	}

	rejectedBy := make(map[uuid.UUID]domain.Role, len(leaves))
	for _, l := range leaves {
		rejectedBy[l.ID] = cascadeRejecter(roles[l.ApplicantID])
	}

	if err := utx.CreditBalances(ctx, credits); err != nil {
		log.Error("cascade refund failed", zap.Error(err))
		return 0, apperror.StoreUnavailable(err)
	}

	rejected, err := qtx.BulkCascadeReject(ctx, rejectedBy, CascadeReason(day), c.now())
	if err != nil {
		log.Error("cascade reject failed", zap.Error(err))
		return 0, apperror.StoreUnavailable(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("cascade commit failed", zap.Error(err))
		return 0, apperror.StoreUnavailable(err)
	}

	log.Info("holiday cascade applied",
		zap.String("date", calendar.Format(day)),
		zap.Int64("rejected", rejected),
		zap.Int("applicants_refunded", len(credits)),
	)
	return int(rejected), nil
}

// Sweep re-applies every holiday from today on. It keeps going past a failed
// date and returns the first error with the total rejected.
func (c *Cascade) Sweep(ctx context.Context) (int, error) {
	dates, err := c.dates.FindDatesFrom(ctx, calendar.Normalize(c.now()))
	if err != nil {
		c.logger.Error("holiday sweep list dates failed", zap.Error(err))
		return 0, apperror.StoreUnavailable(err)
	}

	var (
		total    int
		firstErr error
	)
	for _, d := range dates {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := c.OnHolidayDateChanged(ctx, d)
		if err != nil {
			c.logger.Warn("holiday sweep date failed", zap.String("date", calendar.Format(d)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += n
	}
	if total > 0 {
		c.logger.Info("holiday sweep rejected leave", zap.Int("rejected", total), zap.Int("dates", len(dates)))
	}
	return total, firstErr
}

// cascadeRejecter is hr for employee applicants and management otherwise.
func cascadeRejecter(applicantRole domain.Role) domain.Role {
	if applicantRole == domain.RoleEmployee {
		return domain.RoleHR
	}
	return domain.RoleManagement
}
