package user

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

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	FindAll(ctx context.Context, page, pageSize int) ([]User, int64, error)
	LockByID(ctx context.Context, id uuid.UUID) (*User, error)
	DebitBalance(ctx context.Context, id uuid.UUID, days int) (bool, error)
	CreditBalance(ctx context.Context, id uuid.UUID, days int) error
	CreditBalances(ctx context.Context, credits map[uuid.UUID]int) error
	AccrueBalance(ctx context.Context, days int, roles []domain.Role) (int64, error)
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

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *repository) FindAll(ctx context.Context, page, pageSize int) ([]User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := r.db.WithContext(ctx).
		Order("role ASC").
		Order("name ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error
	return users, total, err
}

// LockByID reads the user row FOR UPDATE. Only meaningful inside a tx.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DebitBalance subtracts days only if the balance covers them. The bool is
// false when the guard rejected the update.
func (r *repository) DebitBalance(ctx context.Context, id uuid.UUID, days int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ? AND leave_balance >= ?", id, days).
		Updates(map[string]any{
			"leave_balance": gorm.Expr("leave_balance - ?", days),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreditBalance(ctx context.Context, id uuid.UUID, days int) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"leave_balance": gorm.Expr("leave_balance + ?", days),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreditBalances applies every credit in a single UPDATE.
func (r *repository) CreditBalances(ctx context.Context, credits map[uuid.UUID]int) error {
	if len(credits) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(credits))
	for id := range credits {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})

	var expr strings.Builder
	args := make([]any, 0, len(ids)*2)
	expr.WriteString("leave_balance + CASE id")
	for _, id := range ids {
		expr.WriteString(" WHEN ? THEN ?")
		args = append(args, id, credits[id])
	}
	expr.WriteString(" ELSE 0 END")

	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"leave_balance": gorm.Expr(expr.String(), args...),
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *repository) AccrueBalance(ctx context.Context, days int, roles []domain.Role) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("role IN ?", roles).
		Updates(map[string]any{
			"leave_balance": gorm.Expr("leave_balance + ?", days),
			"updated_at":    time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
