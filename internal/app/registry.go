package app

import (
	"net/http"

	"go-leave/internal/accrual"
	"go-leave/internal/auth"
	"go-leave/internal/config"
	"go-leave/internal/holiday"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/shared/response"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	in *Infra,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(in.GormDB)
	leaveRepo := leave.NewRepository(in.GormDB)
	holidayRepo := holiday.NewRepository(in.GormDB)
	outboxRepo := kafka.NewOutboxRepository(in.SQLDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(rbac.DefaultPolicies())
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	sessions := auth.NewSessionStore(in.Redis)
	authService := auth.NewService(userRepo, sessions, auth.Config{
		JWTSecret:       cfg.Auth.JWTSecret,
		TokenTTL:        cfg.Auth.JWTExpiry,
		StartingBalance: cfg.Leave.DefaultBalance,
	})
	userService := user.NewService(userRepo)
	leaveService := leave.NewService(in.SQLDB, leaveRepo, userRepo, holidayRepo)
	cascade := leave.NewCascade(in.SQLDB, leaveRepo, userRepo, holidayRepo)
	holidayService := holiday.NewService(in.SQLDB, holidayRepo,
		holiday.WithOutbox(outboxRepo),
		holiday.WithCache(in.Redis, cfg.Leave.HolidayCacheTTL),
		holiday.WithDateChangedHook(cascade),
	)
	accrualService := accrual.NewService(userRepo, in.Redis, cfg.Leave.AccrualDays)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), cfg.Auth.JWTExpiry)
	userHandler := user.NewHandler(userService)
	leaveHandler := leave.NewHandler(leaveService)
	holidayHandler := holiday.NewHandler(holidayService)
	accrualHandler := accrual.NewHandler(accrualService)
	rbacHandler := rbac.NewHandler(rbacService)

	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSecret, sessions)

	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMiddleware)
		user.RegisterRoutes(api, userHandler, authMiddleware, rbacService)
		accrual.RegisterRoutes(api, accrualHandler, authMiddleware, rbacService)
		leave.RegisterRoutes(api, leaveHandler, authMiddleware, rbacService, in.Redis)
		holiday.RegisterRoutes(api, holidayHandler, authMiddleware, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, authMiddleware)
	}

	return nil
}
