package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextSessionID = "session_id"
	contextActor     = "actor"
)

var (
	ErrTokenMissing = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrTokenInvalid = apperror.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired = apperror.New("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)
	ErrSessionEnded = apperror.New("SESSION_EXPIRED", "Session expired or replaced", http.StatusUnauthorized)
)

// SessionChecker confirms that a token's session is still the active one.
type SessionChecker interface {
	IsActive(ctx context.Context, userID, sessionID string) (bool, error)
}

// AuthMiddleware validates the bearer token (or access_token cookie),
// resolves the actor and checks the session is still current.
func AuthMiddleware(secret string, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			response.Abort(c, ErrTokenMissing)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Abort(c, ErrTokenExpired)
				return
			}
			response.Abort(c, ErrTokenInvalid)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Abort(c, ErrTokenInvalid)
			return
		}
		userID, _ := claims["user_id"].(string)
		role, _ := claims["role"].(string)
		sessionID, _ := claims["sid"].(string)

		actor, err := domain.NewActor(userID, role)
		if err != nil || sessionID == "" {
			response.Abort(c, ErrTokenInvalid)
			return
		}

		ctx := c.Request.Context()
		if sessions != nil {
			active, err := sessions.IsActive(ctx, userID, sessionID)
			if err != nil {
				contextutil.GetLogger(ctx, zap.L()).Error("session lookup failed", zap.Error(err))
				response.Abort(c, apperror.StoreUnavailable(err).(*apperror.AppError))
				return
			}
			if !active {
				response.Abort(c, ErrSessionEnded)
				return
			}
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, actor.Role.String())
		c.Set(ContextSessionID, sessionID)
		c.Set(contextActor, actor)

		ctx = contextutil.WithUserID(ctx, userID)
		ctx = contextutil.WithRole(ctx, actor.Role.String())
		if l := contextutil.GetLogger(ctx, nil); l != nil {
			ctx = contextutil.WithLogger(ctx, l.With(zap.String("user_id", userID), zap.String("role", role)))
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ActorFrom returns the actor resolved by AuthMiddleware.
func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(contextActor)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}

// SetActor is used by tests and internal callers that bypass the token.
func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set(ContextUserID, actor.ID.String())
	c.Set(ContextRole, actor.Role.String())
	c.Set(contextActor, actor)
}
