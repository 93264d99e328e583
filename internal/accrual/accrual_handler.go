package accrual

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("accrual.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.handler")
	}
	return &Handler{service: service, logger: l}
}

// RunMonthly is the manual trigger; it shares the once-per-month guard with
// the scheduler.
func (h *Handler) RunMonthly(c *gin.Context) {
	resp, err := h.service.RunMonthly(c.Request.Context(), time.Now().UTC())
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("manual accrual failed",
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("Added %d days to %s users", resp.DaysAdded, strings.Join(resp.Roles, " and ")),
		"accrual": resp,
	}, nil)
}
