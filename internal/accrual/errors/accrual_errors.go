package accrualerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrAlreadyApplied = apperror.New(
		"ACCRUAL_ALREADY_APPLIED",
		"monthly accrual has already been applied for this month",
		http.StatusConflict,
	)
)
