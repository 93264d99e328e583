package holiday

import "go-leave/internal/shared/calendar"

type CreateHolidayRequest struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// UpdateHolidayRequest is partial: nil fields keep their stored value.
type UpdateHolidayRequest struct {
	Date *string `json:"date"`
	Name *string `json:"name"`
}

type HolidayResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at,omitempty"`
}

// MutationResponse is returned by create and update. RejectedLeaves counts
// approved leave rejected by the cascade the write triggered.
type MutationResponse struct {
	HolidayResponse
	RejectedLeaves int `json:"rejected_leaves"`
}

func mapToResponse(h PublicHoliday) HolidayResponse {
	resp := HolidayResponse{
		ID:        h.ID.String(),
		Date:      calendar.Format(h.Date),
		Name:      h.Name,
		CreatedBy: h.CreatedBy.String(),
	}
	if !h.CreatedAt.IsZero() {
		resp.CreatedAt = h.CreatedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return resp
}
