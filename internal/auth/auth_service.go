package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/dbtx"
	"go-leave/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	Logout(ctx context.Context, userID string) error
	GetMe(ctx context.Context, userID string) (AuthResponse, error)
}

type Config struct {
	JWTSecret       string
	TokenTTL        time.Duration
	StartingBalance int
}

type service struct {
	users    user.Repository
	sessions SessionStore
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(users user.Repository, sessions SessionStore, cfg Config, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	name := strings.TrimSpace(req.Name)
	if len(name) < 3 {
		return AuthResponse{}, autherrors.ErrNameTooShort
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	role := domain.RoleEmployee
	if req.Role != "" {
		r, err := domain.ParseRole(req.Role)
		if err != nil {
			return AuthResponse{}, autherrors.ErrInvalidRole
		}
		role = r
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error("register email lookup failed", zap.Error(err))
		return AuthResponse{}, apperror.StoreUnavailable(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to hash password", http.StatusInternalServerError)
	}

	now := s.now()
	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Password:     string(hashed),
		Role:         role,
		LeaveBalance: s.cfg.StartingBalance,
		JoinedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if dbtx.IsUniqueViolation(err, "uq_users_email") {
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		log.Error("register persist failed", zap.Error(err))
		return AuthResponse{}, apperror.StoreUnavailable(err)
	}

	log.Info("user registered", zap.String("user_id", u.ID.String()), zap.String("role", role.String()))
	return user.MapToResponse(*u), nil
}

func (s *service) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResponse{}, autherrors.ErrInvalidCredentials
		}
		log.Error("login lookup failed", zap.Error(err))
		return LoginResponse{}, apperror.StoreUnavailable(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		log.Warn("login password mismatch", zap.String("user_id", u.ID.String()))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	sid, err := s.sessions.Start(ctx, u.ID.String(), s.cfg.TokenTTL)
	if err != nil {
		log.Error("login session start failed", zap.Error(err))
		return LoginResponse{}, apperror.StoreUnavailable(err)
	}

	expiresAt := s.now().Add(s.cfg.TokenTTL)
	token, err := s.generateToken(u, sid, expiresAt)
	if err != nil {
		log.Error("login token signing failed", zap.Error(err))
		return LoginResponse{}, autherrors.ErrTokenGenerationFailed
	}

	log.Info("user logged in", zap.String("user_id", u.ID.String()))
	return LoginResponse{
		User:        user.MapToResponse(*u),
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (s *service) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.End(ctx, userID); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("logout session end failed", zap.Error(err))
		return apperror.StoreUnavailable(err)
	}
	return nil
}

func (s *service) GetMe(ctx context.Context, userID string) (AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidUserID
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		contextutil.GetLogger(ctx, s.logger).Error("me lookup failed", zap.Error(err))
		return AuthResponse{}, apperror.StoreUnavailable(err)
	}
	return user.MapToResponse(*u), nil
}

func (s *service) generateToken(u *user.User, sid string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    u.Role.String(),
		"sid":     sid,
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
