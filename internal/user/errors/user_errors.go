package usererrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrProfileForbidden = apperror.New(
		apperror.CodeForbidden,
		"employees can only view their own profile",
		http.StatusForbidden,
	)
)
