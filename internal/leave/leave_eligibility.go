package leave

import (
	"strings"
	"time"
	"unicode/utf8"

	"go-leave/internal/holiday"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/calendar"
)

// maxLeaveTypeLength matches leaves.leave_type VARCHAR(30).
const maxLeaveTypeLength = 30

// draft is a request that passed the checks needing no store access.
type draft struct {
	LeaveType string
	Start     time.Time
	End       time.Time
	Comment   string
}

// parseRequest validates presence, format, ordering and the past-date rule
// in that order. The start date may be today but not earlier.
func parseRequest(req CreateLeaveRequest, today time.Time) (draft, error) {
	leaveType := strings.TrimSpace(req.LeaveType)
	startRaw := strings.TrimSpace(req.StartDate)
	endRaw := strings.TrimSpace(req.EndDate)
	if leaveType == "" || startRaw == "" || endRaw == "" {
		return draft{}, leaveerrors.ErrMissingFields
	}
	if utf8.RuneCountInString(leaveType) > maxLeaveTypeLength {
		return draft{}, leaveerrors.ErrLeaveTypeTooLong
	}

	start, err := calendar.ParseDay(startRaw)
	if err != nil {
		return draft{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := calendar.ParseDay(endRaw)
	if err != nil {
		return draft{}, leaveerrors.ErrInvalidDateFormat
	}

	if start.After(end) {
		return draft{}, leaveerrors.ErrInvalidRange
	}
	if start.Before(calendar.Normalize(today)) {
		return draft{}, leaveerrors.ErrPastDate
	}

	return draft{
		LeaveType: leaveType,
		Start:     start,
		End:       end,
		Comment:   strings.TrimSpace(req.Comment),
	}, nil
}

// assessRange rejects ranges touching a holiday and returns the working days
// the range would consume.
func assessRange(d draft, holidays []holiday.PublicHoliday) (int, error) {
	set := calendar.NewHolidaySet()
	var colliding []string
	for _, h := range holidays {
		day := calendar.Normalize(h.Date)
		if !calendar.Spans(d.Start, d.End, day) {
			continue
		}
		set.Add(day)
		colliding = append(colliding, h.Name+" ("+calendar.Format(day)+")")
	}
	if len(colliding) > 0 {
		return 0, leaveerrors.HolidayConflict(colliding)
	}

	days := calendar.WorkingDays(d.Start, d.End, set)
	if days <= 0 {
		return 0, leaveerrors.ErrNoWorkingDays
	}
	return days, nil
}

func checkBalance(balance, workingDays int) error {
	if balance <= 0 {
		return leaveerrors.ErrInsufficientBalance
	}
	if balance < workingDays {
		return leaveerrors.BalanceTooLow(balance)
	}
	return nil
}
