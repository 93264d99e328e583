package holiday

import (
	"time"

	"github.com/google/uuid"
)

type PublicHoliday struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:uq_public_holidays_date_name,priority:1"`
	Name      string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_public_holidays_date_name,priority:2"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PublicHoliday) TableName() string {
	return "public_holidays"
}
