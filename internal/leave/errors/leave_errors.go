package leaveerrors

import (
	"fmt"
	"net/http"
	"strings"

	"go-leave/internal/shared/apperror"
)

var (
	ErrMissingFields = apperror.New(
		apperror.CodeValidation,
		"leave_type, start_date and end_date are required",
		http.StatusBadRequest,
	)
	ErrLeaveTypeTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be at most 30 characters",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrPastDate = apperror.New(
		apperror.CodeInvalidInput,
		"start_date cannot be in the past",
		http.StatusBadRequest,
	)
	ErrOverlappingRequest = apperror.New(
		apperror.CodeConflict,
		"you already have a leave request overlapping these dates",
		http.StatusConflict,
	)
	ErrHolidayConflict = apperror.New(
		"HOLIDAY_CONFLICT",
		"the requested dates include a public holiday",
		http.StatusBadRequest,
	)
	ErrNoWorkingDays = apperror.New(
		"NO_WORKING_DAYS",
		"the requested dates contain no working days",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		"INSUFFICIENT_BALANCE",
		"insufficient leave balance",
		http.StatusBadRequest,
	)
	ErrBalanceTooLow = apperror.New(
		"BALANCE_TOO_LOW",
		"leave balance is lower than the requested working days",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of pending, approved, rejected, cancelled",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrApplicantNotFound = apperror.New(
		apperror.CodeNotFound,
		"applicant not found",
		http.StatusNotFound,
	)
	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"leave is not in a state that allows this action",
		http.StatusBadRequest,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to decide on this leave",
		http.StatusForbidden,
	)
	ErrUnsupportedApplicantRole = apperror.New(
		"UNSUPPORTED_APPLICANT_ROLE",
		"leave filed by this role cannot be approved or rejected",
		http.StatusForbidden,
	)
	ErrConcurrentModification = apperror.New(
		"CONCURRENT_MODIFICATION",
		"the leave was modified concurrently, retry the request",
		http.StatusConflict,
	)
)

// HolidayConflict names every colliding holiday as "Name (YYYY-MM-DD)".
func HolidayConflict(entries []string) *apperror.AppError {
	return ErrHolidayConflict.WithMessage(
		fmt.Sprintf("the requested dates include public holidays: %s", strings.Join(entries, ", ")),
	)
}

func BalanceTooLow(remaining int) *apperror.AppError {
	return ErrBalanceTooLow.WithMessage(fmt.Sprintf("You only have %d days left", remaining))
}

func NotPendingOrApproved(status string) *apperror.AppError {
	return ErrInvalidState.WithMessage(fmt.Sprintf("leave is %s, neither pending nor approved", status))
}

func NotPending(status string) *apperror.AppError {
	return ErrInvalidState.WithMessage(fmt.Sprintf("leave is %s, only pending leave can be approved", status))
}

func ForbiddenFor(required, applicant string) *apperror.AppError {
	return ErrForbidden.WithMessage(fmt.Sprintf("only %s may decide on leave filed by %s", required, applicant))
}
