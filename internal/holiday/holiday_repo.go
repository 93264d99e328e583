package holiday

import (
	"context"
	"database/sql"
	"time"

	"go-leave/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, h *PublicHoliday) error
	FindByID(ctx context.Context, id uuid.UUID) (*PublicHoliday, error)
	FindAll(ctx context.Context) ([]PublicHoliday, error)
	FindInRange(ctx context.Context, start, end time.Time) ([]PublicHoliday, error)
	FindDatesFrom(ctx context.Context, from time.Time) ([]time.Time, error)
	ExistsByDateName(ctx context.Context, date time.Time, name string, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, h *PublicHoliday) error
	Delete(ctx context.Context, id uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, h *PublicHoliday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*PublicHoliday, error) {
	var h PublicHoliday
	if err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repository) FindAll(ctx context.Context) ([]PublicHoliday, error) {
	var holidays []PublicHoliday
	err := r.db.WithContext(ctx).
		Order("date ASC").
		Order("name ASC").
		Find(&holidays).Error
	return holidays, err
}

// FindInRange returns holidays whose date lies in [start, end], oldest first.
func (r *repository) FindInRange(ctx context.Context, start, end time.Time) ([]PublicHoliday, error) {
	var holidays []PublicHoliday
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date ASC").
		Order("name ASC").
		Find(&holidays).Error
	return holidays, err
}

// FindDatesFrom lists the distinct holiday dates on or after from.
func (r *repository) FindDatesFrom(ctx context.Context, from time.Time) ([]time.Time, error) {
	var holidays []PublicHoliday
	err := r.db.WithContext(ctx).
		Select("date").
		Where("date >= ?", from).
		Group("date").
		Order("date ASC").
		Find(&holidays).Error
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, len(holidays))
	for i, h := range holidays {
		dates[i] = h.Date
	}
	return dates, nil
}

func (r *repository) ExistsByDateName(ctx context.Context, date time.Time, name string, excludeID *uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&PublicHoliday{}).
		Where("date = ? AND name = ?", date, name)
	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, h *PublicHoliday) error {
	res := r.db.WithContext(ctx).
		Model(&PublicHoliday{}).
		Where("id = ?", h.ID).
		Updates(map[string]any{
			"date":       h.Date,
			"name":       h.Name,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&PublicHoliday{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
