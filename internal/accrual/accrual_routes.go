package accrual

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
) {
	accrue := r.Group("/leaves/accrue")
	accrue.Use(auth)
	{
		accrue.POST("/monthly", middleware.RBACAuthorize(rbacService, "accrual", "run"), handler.RunMonthly)
	}
}
