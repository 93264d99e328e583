package user

import (
	"context"
	"errors"

	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, page, pageSize int) ([]UserResponse, int64, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (UserResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetAll(ctx context.Context, page, pageSize int) ([]UserResponse, int64, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	users, total, err := s.repo.FindAll(ctx, page, pageSize)
	if err != nil {
		l.Error("list users failed", zap.Error(err))
		return nil, 0, apperror.StoreUnavailable(err)
	}
	return mapToListResponse(users), total, nil
}

// GetByID lets hr and management read any profile; employees only their own.
func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	uid, err := uuid.Parse(id)
	if err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}
	if actor.Role == domain.RoleEmployee && actor.ID != uid {
		l.Warn("user profile access denied",
			zap.String("actor_id", actor.ID.String()),
			zap.String("target_id", id),
		)
		return UserResponse{}, usererrors.ErrProfileForbidden
	}

	u, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		l.Error("get user failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, apperror.StoreUnavailable(err)
	}
	return MapToResponse(*u), nil
}
