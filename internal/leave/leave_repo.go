package leave

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error)
	HasOverlap(ctx context.Context, applicantID uuid.UUID, start, end time.Time) (bool, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from Status, change StatusChange) (bool, error)
	FindApprovedSpanning(ctx context.Context, day time.Time) ([]Leave, error)
	BulkCascadeReject(ctx context.Context, rejectedBy map[uuid.UUID]domain.Role, reason string, decidedAt time.Time) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]Leave, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: dbtx.Bind(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// HasOverlap checks every request of the applicant whatever its status.
func (r *repository) HasOverlap(ctx context.Context, applicantID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("applicant_id = ?", applicantID).
		Where("NOT (end_date < ? OR start_date > ?)", start, end).
		Count(&count).Error
	return count > 0, err
}

// TransitionStatus updates the row only while it is still in from. The bool
// is false when another writer moved it first.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from Status, change StatusChange) (bool, error) {
	updates := map[string]any{
		"status":     change.To,
		"decided_at": change.DecidedAt,
		"updated_at": change.DecidedAt,
	}
	if change.ApproverID != nil {
		updates["approver_id"] = *change.ApproverID
	}
	if change.RejectedByRole != nil {
		updates["rejected_by_role"] = *change.RejectedByRole
	}
	if change.RejectionReason != nil {
		updates["rejection_reason"] = *change.RejectionReason
	}

	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindApprovedSpanning locks approved leave whose range covers day.
func (r *repository) FindApprovedSpanning(ctx context.Context, day time.Time) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Order("id ASC").
		Find(&leaves).Error
	return leaves, err
}

// BulkCascadeReject rejects all given approved leave in one statement, each
// with its own rejected_by_role.
func (r *repository) BulkCascadeReject(ctx context.Context, rejectedBy map[uuid.UUID]domain.Role, reason string, decidedAt time.Time) (int64, error) {
	if len(rejectedBy) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(rejectedBy))
	for id := range rejectedBy {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})

	var expr strings.Builder
	args := make([]any, 0, len(ids)*2)
	expr.WriteString("CASE id")
	for _, id := range ids {
		expr.WriteString(" WHEN ? THEN ?")
		args = append(args, id, string(rejectedBy[id]))
	}
	expr.WriteString(" END")

	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id IN ? AND status = ?", ids, StatusApproved).
		Updates(map[string]any{
			"status":           StatusRejected,
			"rejected_by_role": gorm.Expr(expr.String(), args...),
			"rejection_reason": reason,
			"decided_at":       decidedAt,
			"updated_at":       decidedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Leave, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if len(filter.ApplicantRoles) > 0 {
			db = db.Where(
				"(applicant_id = ? OR applicant_id IN (?))",
				filter.OwnerID,
				r.db.Table("users").Select("id").Where("role IN ?", filter.ApplicantRoles),
			)
		} else {
			db = db.Where("applicant_id = ?", filter.OwnerID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Leave{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leaves []Leave
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("start_date DESC").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&leaves).Error
	return leaves, total, err
}
