package leave

import (
	"errors"
	"strings"
	"time"

	"go-leave/internal/domain"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

var ErrUnknownStatus = errors.New("unknown leave status")

// ParseStatus accepts an empty string as "any status".
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case "", StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return st, nil
	}
	return "", ErrUnknownStatus
}

type Leave struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_applicant_dates"`

	LeaveType   string    `gorm:"type:varchar(30);not null"`
	StartDate   time.Time `gorm:"type:date;not null;index:idx_leaves_applicant_dates"`
	EndDate     time.Time `gorm:"type:date;not null;index:idx_leaves_applicant_dates"`
	WorkingDays int       `gorm:"type:int;not null"`
	Comment     string    `gorm:"type:text"`

	Status          Status       `gorm:"type:varchar(20);not null;default:pending;index:idx_leaves_status"`
	ApproverID      *uuid.UUID   `gorm:"type:uuid"`
	RejectedByRole  *domain.Role `gorm:"type:varchar(20)"`
	RejectionReason *string      `gorm:"type:text"`
	DecidedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Leave) TableName() string {
	return "leaves"
}

// StatusChange describes a guarded status transition.
type StatusChange struct {
	To              Status
	ApproverID      *uuid.UUID
	RejectedByRole  *domain.Role
	RejectionReason *string
	DecidedAt       time.Time
}

// ListFilter selects leave visible to one reader: their own requests plus
// requests filed by any of ApplicantRoles.
type ListFilter struct {
	OwnerID        uuid.UUID
	ApplicantRoles []domain.Role
	Status         Status
	Page           int
	PageSize       int
}
