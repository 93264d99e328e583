package holidayerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidHolidayID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid holiday id",
		http.StatusBadRequest,
	)
	ErrMissingFields = apperror.New(
		apperror.CodeValidation,
		"date and name are required",
		http.StatusBadRequest,
	)
	ErrEmptyUpdate = apperror.New(
		apperror.CodeValidation,
		"provide a date or a name to update",
		http.StatusBadRequest,
	)
	ErrNameTooShort = apperror.New(
		apperror.CodeValidation,
		"holiday name must be at least 3 characters",
		http.StatusBadRequest,
	)
	ErrNameTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"holiday name must be at most 120 characters",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrPastDate = apperror.New(
		apperror.CodeInvalidInput,
		"holiday date cannot be in the past",
		http.StatusBadRequest,
	)
	ErrDuplicateHoliday = apperror.New(
		"DUPLICATE_HOLIDAY",
		"a holiday with this name already exists on this date",
		http.StatusConflict,
	)
	ErrHolidayNotFound = apperror.New(
		apperror.CodeNotFound,
		"holiday not found",
		http.StatusNotFound,
	)
)
