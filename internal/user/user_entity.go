package user

import (
	"time"

	"go-leave/internal/domain"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string      `gorm:"column:name;type:varchar(255);not null"`
	Email        string      `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_users_email"`
	Password     string      `gorm:"column:password;type:text;not null"`
	Role         domain.Role `gorm:"column:role;type:varchar(20);not null;default:employee;index"`
	LeaveBalance int         `gorm:"column:leave_balance;type:int;not null;default:2"`
	JoinedAt     time.Time   `gorm:"column:joined_at;not null"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
