package leave

import (
	"go-leave/internal/shared/calendar"
)

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Comment   string `json:"comment"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	ApplicantID     string  `json:"applicant_id"`
	ApplicantName   string  `json:"applicant_name,omitempty"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	WorkingDays     int     `json:"working_days"`
	Comment         string  `json:"comment,omitempty"`
	Status          string  `json:"status"`
	ApproverID      *string `json:"approver_id,omitempty"`
	RejectedByRole  *string `json:"rejected_by_role,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		ApplicantID:     l.ApplicantID.String(),
		LeaveType:       l.LeaveType,
		StartDate:       calendar.Format(l.StartDate),
		EndDate:         calendar.Format(l.EndDate),
		WorkingDays:     l.WorkingDays,
		Comment:         l.Comment,
		Status:          string(l.Status),
		RejectionReason: l.RejectionReason,
	}
	if l.ApproverID != nil {
		s := l.ApproverID.String()
		resp.ApproverID = &s
	}
	if l.RejectedByRole != nil {
		s := l.RejectedByRole.String()
		resp.RejectedByRole = &s
	}
	if l.DecidedAt != nil {
		s := l.DecidedAt.UTC().Format("2006-01-02 15:04:05")
		resp.DecidedAt = &s
	}
	if !l.CreatedAt.IsZero() {
		resp.CreatedAt = l.CreatedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return resp
}
