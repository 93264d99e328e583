package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/domain"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeEnforcer struct {
	allowed map[string]bool
	err     error
	last    domain.EnforceRequest
}

func (f *fakeEnforcer) Enforce(req domain.EnforceRequest) (bool, error) {
	f.last = req
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[req.Role+":"+req.Resource+":"+req.Action], nil
}

func setupRBACRouter(enforcer middleware.RBACService, role domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/holidays",
		func(c *gin.Context) {
			if role != "" {
				middleware.SetActor(c, domain.Actor{ID: uuid.New(), Role: role})
			}
			c.Next()
		},
		middleware.RBACAuthorize(enforcer, "holiday", "manage"),
		func(c *gin.Context) { c.Status(http.StatusCreated) },
	)
	return r
}

func TestRBACAuthorize(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		enforcer := &fakeEnforcer{allowed: map[string]bool{"hr:holiday:manage": true}}
		r := setupRBACRouter(enforcer, domain.RoleHR)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/holidays", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, domain.EnforceRequest{Role: "hr", Resource: "holiday", Action: "manage"}, enforcer.last)
	})

	t.Run("denied", func(t *testing.T) {
		enforcer := &fakeEnforcer{allowed: map[string]bool{}}
		r := setupRBACRouter(enforcer, domain.RoleEmployee)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/holidays", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "holiday:manage")
	})

	t.Run("no role in context", func(t *testing.T) {
		r := setupRBACRouter(&fakeEnforcer{}, "")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/holidays", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("enforcer error", func(t *testing.T) {
		r := setupRBACRouter(&fakeEnforcer{err: errors.New("boom")}, domain.RoleHR)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/holidays", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
