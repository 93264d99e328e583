package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/holiday"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/calendar"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/dbtx"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HolidayFinder is the read side of the holiday store the engine needs.
type HolidayFinder interface {
	FindInRange(ctx context.Context, start, end time.Time) ([]holiday.PublicHoliday, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	RequestLeave(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id, reason string) (LeaveResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	ListMine(ctx context.Context, actor domain.Actor, status string, page, pageSize int) ([]LeaveResponse, int64, error)
	ListForRole(ctx context.Context, actor domain.Actor, status string, page, pageSize int) ([]LeaveResponse, int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	users    user.Repository
	holidays HolidayFinder
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, users user.Repository, holidays HolidayFinder, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		users:    users,
		holidays: holidays,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) RequestLeave(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("request leave",
		zap.String("applicant_id", actor.ID.String()),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	d, err := parseRequest(req, s.now())
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		log.Error("request leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, apperror.StoreUnavailable(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	utx := s.users.WithTx(tx)

	applicant, err := utx.LockByID(ctx, actor.ID)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "request leave lock applicant failed", err, leaveerrors.ErrApplicantNotFound)
	}

	if applicant.Role.SelfOverlapChecked() {
		overlap, err := qtx.HasOverlap(ctx, applicant.ID, d.Start, d.End)
		if err != nil {
			return LeaveResponse{}, s.storeError(log, "request leave overlap check failed", err, nil)
		}
		if overlap {
			log.Warn("request leave overlaps an existing request",
				zap.String("applicant_id", applicant.ID.String()),
				zap.String("start_date", calendar.Format(d.Start)),
				zap.String("end_date", calendar.Format(d.End)),
			)
			return LeaveResponse{}, leaveerrors.ErrOverlappingRequest
		}
	}

	holidays, err := s.holidays.FindInRange(ctx, d.Start, d.End)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "request leave holiday lookup failed", err, nil)
	}

	workingDays, err := assessRange(d, holidays)
	if err != nil {
		return LeaveResponse{}, err
	}
	if err := checkBalance(applicant.LeaveBalance, workingDays); err != nil {
		return LeaveResponse{}, err
	}

	l := &Leave{
		ID:          uuid.New(),
		ApplicantID: applicant.ID,
		LeaveType:   d.LeaveType,
		StartDate:   d.Start,
		EndDate:     d.End,
		WorkingDays: workingDays,
		Comment:     d.Comment,
		Status:      StatusPending,
	}
	if err := qtx.Create(ctx, l); err != nil {
		return LeaveResponse{}, s.storeError(log, "request leave persist failed", err, nil)
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, s.storeError(log, "request leave commit failed", err, nil)
	}

	log.Info("leave requested",
		zap.String("leave_id", l.ID.String()),
		zap.String("applicant_id", applicant.ID.String()),
		zap.Int("working_days", workingDays),
	)
	resp := mapToResponse(*l)
	resp.ApplicantName = applicant.Name
	return resp, nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("approve leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, apperror.StoreUnavailable(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	utx := s.users.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "approve leave load failed", err, leaveerrors.ErrLeaveNotFound)
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.NotPending(string(l.Status))
	}

	applicant, err := utx.FindByID(ctx, l.ApplicantID)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "approve leave load applicant failed", err, leaveerrors.ErrApplicantNotFound)
	}
	if err := authorizeDecision(actor, applicant.Role); err != nil {
		log.Warn("approve leave denied",
			zap.String("leave_id", id),
			zap.String("actor_role", actor.Role.String()),
			zap.String("applicant_role", applicant.Role.String()),
		)
		return LeaveResponse{}, err
	}
	if applicant.LeaveBalance < l.WorkingDays {
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	debited, err := utx.DebitBalance(ctx, applicant.ID, l.WorkingDays)
	if dbtx.IsCheckViolation(err) {
		// ck_users_leave_balance
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "approve leave debit failed", err, nil)
	}
	if !debited {
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	now := s.now()
	change := StatusChange{To: StatusApproved, ApproverID: &actor.ID, DecidedAt: now}
	moved, err := qtx.TransitionStatus(ctx, l.ID, StatusPending, change)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "approve leave status update failed", err, nil)
	}
	if !moved {
		return LeaveResponse{}, leaveerrors.ErrInvalidState
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, s.storeError(log, "approve leave commit failed", err, nil)
	}

	log.Info("leave approved",
		zap.String("leave_id", id),
		zap.String("approver_id", actor.ID.String()),
		zap.Int("debited_days", l.WorkingDays),
	)
	applyChange(l, change)
	resp := mapToResponse(*l)
	resp.ApplicantName = applicant.Name
	return resp, nil
}

// Reject rejects a pending leave, or cancels an approved one and refunds its
// working days.
func (s *service) Reject(ctx context.Context, actor domain.Actor, id, reason string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("reject leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, apperror.StoreUnavailable(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	utx := s.users.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "reject leave load failed", err, leaveerrors.ErrLeaveNotFound)
	}

	applicant, err := utx.FindByID(ctx, l.ApplicantID)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "reject leave load applicant failed", err, leaveerrors.ErrApplicantNotFound)
	}
	if err := authorizeDecision(actor, applicant.Role); err != nil {
		log.Warn("reject leave denied",
			zap.String("leave_id", id),
			zap.String("actor_role", actor.Role.String()),
			zap.String("applicant_role", applicant.Role.String()),
		)
		return LeaveResponse{}, err
	}

	from := l.Status
	change := StatusChange{ApproverID: &actor.ID, DecidedAt: s.now()}
	if reason != "" {
		change.RejectionReason = &reason
	}

	switch from {
	case StatusPending:
		change.To = StatusRejected
	case StatusApproved:
		change.To = StatusCancelled
		if err := utx.CreditBalance(ctx, applicant.ID, l.WorkingDays); err != nil {
			return LeaveResponse{}, s.storeError(log, "reject leave refund failed", err, leaveerrors.ErrApplicantNotFound)
		}
	default:
		return LeaveResponse{}, leaveerrors.NotPendingOrApproved(string(from))
	}

	moved, err := qtx.TransitionStatus(ctx, l.ID, from, change)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "reject leave status update failed", err, nil)
	}
	if !moved {
		return LeaveResponse{}, leaveerrors.ErrInvalidState
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, s.storeError(log, "reject leave commit failed", err, nil)
	}

	log.Info("leave decided",
		zap.String("leave_id", id),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(change.To)),
		zap.String("approver_id", actor.ID.String()),
	)
	applyChange(l, change)
	resp := mapToResponse(*l)
	resp.ApplicantName = applicant.Name
	return resp, nil
}

// GetByID applies the same visibility as ListForRole.
func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "get leave failed", err, leaveerrors.ErrLeaveNotFound)
	}

	applicant, err := s.users.FindByID(ctx, l.ApplicantID)
	if err != nil {
		return LeaveResponse{}, s.storeError(log, "get leave applicant failed", err, leaveerrors.ErrApplicantNotFound)
	}

	if applicant.ID != actor.ID && !roleVisible(actor.Role, applicant.Role) {
		// Hidden leave reads as missing.
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	resp := mapToResponse(*l)
	resp.ApplicantName = applicant.Name
	return resp, nil
}

func (s *service) ListMine(ctx context.Context, actor domain.Actor, status string, page, pageSize int) ([]LeaveResponse, int64, error) {
	return s.list(ctx, actor, nil, status, page, pageSize)
}

func (s *service) ListForRole(ctx context.Context, actor domain.Actor, status string, page, pageSize int) ([]LeaveResponse, int64, error) {
	return s.list(ctx, actor, actor.Role.VisibleApplicantRoles(), status, page, pageSize)
}

func (s *service) list(ctx context.Context, actor domain.Actor, roles []domain.Role, status string, page, pageSize int) ([]LeaveResponse, int64, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	st, err := ParseStatus(status)
	if err != nil {
		return nil, 0, leaveerrors.ErrInvalidStatusFilter
	}

	leaves, total, err := s.repo.List(ctx, ListFilter{
		OwnerID:        actor.ID,
		ApplicantRoles: roles,
		Status:         st,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		log.Error("list leave failed", zap.Error(err))
		return nil, 0, apperror.StoreUnavailable(err)
	}

	names, err := s.applicantNames(ctx, leaves)
	if err != nil {
		log.Error("list leave applicants failed", zap.Error(err))
		return nil, 0, apperror.StoreUnavailable(err)
	}

	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
		resp[i].ApplicantName = names[l.ApplicantID]
	}
	return resp, total, nil
}

func (s *service) applicantNames(ctx context.Context, leaves []Leave) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{}, len(leaves))
	ids := make([]uuid.UUID, 0, len(leaves))
	for _, l := range leaves {
		if _, ok := seen[l.ApplicantID]; ok {
			continue
		}
		seen[l.ApplicantID] = struct{}{}
		ids = append(ids, l.ApplicantID)
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// storeError maps gorm's not-found to notFound (when given), serialization
// failures to ConcurrentModification and everything else to StoreUnavailable.
func (s *service) storeError(log *zap.Logger, msg string, err error, notFound *apperror.AppError) error {
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if dbtx.IsSerializationFailure(err) {
		log.Warn(msg, zap.Error(err))
		return leaveerrors.ErrConcurrentModification
	}
	log.Error(msg, zap.Error(err))
	return apperror.StoreUnavailable(err)
}

func authorizeDecision(actor domain.Actor, applicantRole domain.Role) error {
	required, err := domain.RequiredApproverRole(applicantRole)
	if err != nil {
		return leaveerrors.ErrUnsupportedApplicantRole
	}
	if actor.Role != required {
		return leaveerrors.ForbiddenFor(required.String(), applicantRole.String())
	}
	return nil
}

func roleVisible(reader, applicant domain.Role) bool {
	for _, r := range reader.VisibleApplicantRoles() {
		if r == applicant {
			return true
		}
	}
	return false
}

func applyChange(l *Leave, change StatusChange) {
	decided := change.DecidedAt
	l.Status = change.To
	l.DecidedAt = &decided
	l.UpdatedAt = decided
	if change.ApproverID != nil {
		l.ApproverID = change.ApproverID
	}
	if change.RejectedByRole != nil {
		l.RejectedByRole = change.RejectedByRole
	}
	if change.RejectionReason != nil {
		l.RejectionReason = change.RejectionReason
	}
}
