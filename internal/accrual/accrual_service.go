package accrual

import (
	"context"
	"strconv"
	"time"

	accrualerrors "go-leave/internal/accrual/errors"
	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	monthLayout = "2006-01"
	guardTTL    = 62 * 24 * time.Hour
)

//go:generate mockgen -source=accrual_service.go -destination=mock/accrual_service_mock.go -package=mock
type Service interface {
	RunMonthly(ctx context.Context, month time.Time) (RunResponse, error)
}

type service struct {
	users  user.Repository
	rdb    *redis.Client
	days   int
	logger *zap.Logger
}

func NewService(users user.Repository, rdb *redis.Client, days int, logger ...*zap.Logger) Service {
	l := zap.L().Named("accrual.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.service")
	}
	return &service{users: users, rdb: rdb, days: days, logger: l}
}

func GuardKey(month time.Time) string {
	return "accrual:" + month.UTC().Format(monthLayout)
}

func accruingRoles() []domain.Role {
	var roles []domain.Role
	for _, r := range []domain.Role{domain.RoleEmployee, domain.RoleHR, domain.RoleManagement} {
		if r.Accrues() {
			roles = append(roles, r)
		}
	}
	return roles
}

// RunMonthly credits the accruing roles once per calendar month. The redis
// guard is released again when the balance update fails so a later run can
// retry.
func (s *service) RunMonthly(ctx context.Context, month time.Time) (RunResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	key := GuardKey(month)

	acquired, err := s.rdb.SetNX(ctx, key, strconv.Itoa(s.days), guardTTL).Result()
	if err != nil {
		log.Error("acquire accrual guard failed", zap.String("key", key), zap.Error(err))
		return RunResponse{}, apperror.StoreUnavailable(err)
	}
	if !acquired {
		return RunResponse{}, accrualerrors.ErrAlreadyApplied
	}

	roles := accruingRoles()
	credited, err := s.users.AccrueBalance(ctx, s.days, roles)
	if err != nil {
		log.Error("accrue leave balance failed", zap.String("month", key), zap.Error(err))
		if delErr := s.rdb.Del(ctx, key).Err(); delErr != nil {
			log.Error("release accrual guard failed", zap.String("key", key), zap.Error(delErr))
		}
		return RunResponse{}, apperror.StoreUnavailable(err)
	}

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}

	log.Info("monthly accrual applied",
		zap.String("month", key),
		zap.Int("days", s.days),
		zap.Int64("users", credited),
	)

	return RunResponse{
		Month:         month.UTC().Format(monthLayout),
		DaysAdded:     s.days,
		Roles:         names,
		UsersCredited: credited,
	}, nil
}
