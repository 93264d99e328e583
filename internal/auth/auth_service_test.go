package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-leave/internal/auth"
	autherrors "go-leave/internal/auth/errors"
	authMock "go-leave/internal/auth/mock"
	"go-leave/internal/domain"
	"go-leave/internal/user"
	userMock "go-leave/internal/user/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

var testConfig = auth.Config{JWTSecret: testSecret, TokenTTL: time.Hour, StartingBalance: 2}

func TestService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := userMock.NewMockRepository(ctrl)
	mockSessions := authMock.NewMockSessionStore(ctrl)
	service := auth.NewService(mockUsers, mockSessions, testConfig, zap.NewNop())
	ctx := context.Background()

	t.Run("defaults to employee with the starting balance", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(ctx, "ayu@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockUsers.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, domain.RoleEmployee, u.Role)
			assert.Equal(t, 2, u.LeaveBalance)
			assert.Equal(t, "Ayu Lestari", u.Name)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")))
			return nil
		})

		resp, err := service.Register(ctx, auth.RegisterRequest{
			Name:     "  Ayu Lestari ",
			Email:    "Ayu@Example.com",
			Password: "password123",
		})

		require.NoError(t, err)
		assert.Equal(t, "ayu@example.com", resp.Email)
		assert.Equal(t, "employee", resp.Role)
		assert.Equal(t, 2, resp.LeaveBalance)
	})

	t.Run("explicit role", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(ctx, "hana@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockUsers.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := service.Register(ctx, auth.RegisterRequest{
			Name: "Hana", Email: "hana@example.com", Password: "password123", Role: "HR",
		})

		require.NoError(t, err)
		assert.Equal(t, "hr", resp.Role)
	})

	t.Run("email taken", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(ctx, "ayu@example.com").Return(&user.User{ID: uuid.New()}, nil)

		_, err := service.Register(ctx, auth.RegisterRequest{Name: "Ayu", Email: "ayu@example.com", Password: "password123"})

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(ctx, "ayu@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockUsers.EXPECT().Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"})

		_, err := service.Register(ctx, auth.RegisterRequest{Name: "Ayu", Email: "ayu@example.com", Password: "password123"})

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})

	t.Run("short name after trimming", func(t *testing.T) {
		_, err := service.Register(ctx, auth.RegisterRequest{Name: " ab ", Email: "ab@example.com", Password: "password123"})

		assert.ErrorIs(t, err, autherrors.ErrNameTooShort)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := service.Register(ctx, auth.RegisterRequest{Name: "Ayu", Email: "ayu@example.com", Password: "password123", Role: "admin"})

		assert.ErrorIs(t, err, autherrors.ErrInvalidRole)
	})
}

func TestService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := userMock.NewMockRepository(ctrl)
	mockSessions := authMock.NewMockSessionStore(ctrl)
	service := auth.NewService(mockUsers, mockSessions, testConfig, zap.NewNop())
	ctx := context.Background()

	pw, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &user.User{ID: uuid.New(), Name: "Hana", Email: "hana@example.com", Password: string(pw), Role: domain.RoleHR}

	t.Run("issues a token bound to a fresh session", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(ctx, u.Email).Return(u, nil)
		mockSessions.EXPECT().Start(ctx, u.ID.String(), time.Hour).Return("sid-1", nil)

		resp, err := service.Login(ctx, u.Email, "password123")

		require.NoError(t, err)
		assert.Equal(t, "hr", resp.User.Role)
		assert.NotEmpty(t, resp.ExpiresAt)

		token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
		require.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, u.ID.String(), claims["user_id"])
		assert.Equal(t, "hr", claims["role"])
		assert.Equal(t, "sid-1", claims["sid"])
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(ctx, u.Email).Return(u, nil)

		_, err := service.Login(ctx, u.Email, "wrongpass")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(ctx, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := service.Login(ctx, "nobody@example.com", "password123")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("session store down", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(ctx, u.Email).Return(u, nil)
		mockSessions.EXPECT().Start(ctx, u.ID.String(), time.Hour).Return("", errors.New("redis down"))

		_, err := service.Login(ctx, u.Email, "password123")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestService_LogoutAndMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := userMock.NewMockRepository(ctrl)
	mockSessions := authMock.NewMockSessionStore(ctrl)
	service := auth.NewService(mockUsers, mockSessions, testConfig, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	t.Run("logout ends the session", func(t *testing.T) {
		mockSessions.EXPECT().End(ctx, id.String()).Return(nil)

		assert.NoError(t, service.Logout(ctx, id.String()))
	})

	t.Run("me", func(t *testing.T) {
		mockUsers.EXPECT().FindByID(ctx, id).Return(&user.User{ID: id, Name: "Ayu", Role: domain.RoleEmployee, LeaveBalance: 4}, nil)

		resp, err := service.GetMe(ctx, id.String())

		require.NoError(t, err)
		assert.Equal(t, 4, resp.LeaveBalance)
	})

	t.Run("me for a deleted user", func(t *testing.T) {
		mockUsers.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.GetMe(ctx, id.String())

		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})

	t.Run("me with a malformed id", func(t *testing.T) {
		_, err := service.GetMe(ctx, "nope")

		assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
	})
}
