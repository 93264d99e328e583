package leave

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"go-leave/internal/holiday"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	today := time.Date(2099, 3, 4, 15, 30, 0, 0, time.UTC)

	t.Run("today is allowed", func(t *testing.T) {
		d, err := parseRequest(CreateLeaveRequest{
			LeaveType: "sick",
			StartDate: "2099-03-04",
			EndDate:   "2099-3-6",
			Comment:   "  flu ",
		}, today)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2099, 3, 4, 0, 0, 0, 0, time.UTC), d.Start)
		assert.Equal(t, time.Date(2099, 3, 6, 0, 0, 0, 0, time.UTC), d.End)
		assert.Equal(t, "flu", d.Comment)
	})

	t.Run("yesterday is past", func(t *testing.T) {
		_, err := parseRequest(CreateLeaveRequest{LeaveType: "sick", StartDate: "2099-03-03", EndDate: "2099-03-06"}, today)
		assert.ErrorIs(t, err, leaveerrors.ErrPastDate)
	})

	t.Run("range is checked before the past rule", func(t *testing.T) {
		_, err := parseRequest(CreateLeaveRequest{LeaveType: "sick", StartDate: "2000-01-05", EndDate: "2000-01-01"}, today)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidRange)
	})

	t.Run("whitespace only fields are missing", func(t *testing.T) {
		_, err := parseRequest(CreateLeaveRequest{LeaveType: "  ", StartDate: "2099-03-04", EndDate: "2099-03-04"}, today)
		assert.ErrorIs(t, err, leaveerrors.ErrMissingFields)
	})

	t.Run("leave type length", func(t *testing.T) {
		d, err := parseRequest(CreateLeaveRequest{LeaveType: " " + strings.Repeat("é", 30) + " ", StartDate: "2099-03-04", EndDate: "2099-03-04"}, today)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("é", 30), d.LeaveType)

		_, err = parseRequest(CreateLeaveRequest{LeaveType: strings.Repeat("a", 31), StartDate: "2099-03-04", EndDate: "2099-03-04"}, today)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	})

	t.Run("rollover dates are rejected", func(t *testing.T) {
		_, err := parseRequest(CreateLeaveRequest{LeaveType: "sick", StartDate: "2099-04-31", EndDate: "2099-05-01"}, today)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})
}

func TestAssessRange(t *testing.T) {
	mon := time.Date(2099, 3, 2, 0, 0, 0, 0, time.UTC)
	fri := time.Date(2099, 3, 6, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2099, 3, 8, 0, 0, 0, 0, time.UTC)

	t.Run("counts weekdays only", func(t *testing.T) {
		days, err := assessRange(draft{Start: mon, End: sun}, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, days)
	})

	t.Run("every colliding holiday is listed", func(t *testing.T) {
		_, err := assessRange(draft{Start: mon, End: fri}, []holiday.PublicHoliday{
			{Date: time.Date(2099, 3, 3, 0, 0, 0, 0, time.UTC), Name: "Founders Day"},
			{Date: time.Date(2099, 3, 5, 0, 0, 0, 0, time.UTC), Name: "Harvest"},
			{Date: time.Date(2099, 3, 20, 0, 0, 0, 0, time.UTC), Name: "Outside"},
		})

		require.ErrorIs(t, err, leaveerrors.ErrHolidayConflict)
		assert.Contains(t, err.Error(), "Founders Day (2099-03-03), Harvest (2099-03-05)")
		assert.NotContains(t, err.Error(), "Outside")
	})

	t.Run("weekend only range", func(t *testing.T) {
		sat := time.Date(2099, 3, 7, 0, 0, 0, 0, time.UTC)
		_, err := assessRange(draft{Start: sat, End: sun}, nil)
		assert.ErrorIs(t, err, leaveerrors.ErrNoWorkingDays)
	})
}

func TestCheckBalance(t *testing.T) {
	assert.ErrorIs(t, checkBalance(0, 1), leaveerrors.ErrInsufficientBalance)
	assert.ErrorIs(t, checkBalance(-1, 1), leaveerrors.ErrInsufficientBalance)

	err := checkBalance(2, 5)
	require.ErrorIs(t, err, leaveerrors.ErrBalanceTooLow)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "You only have 2 days left", appErr.Message)

	assert.NoError(t, checkBalance(5, 5))
}
