package rbac

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/domain"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	last domain.EnforceRequest
	err  error
}

func (m *mockService) Enforce(req domain.EnforceRequest) (bool, error) {
	m.last = req
	if m.err != nil {
		return false, m.err
	}
	return req.Role == "hr" && req.Resource == ResourceHoliday && req.Action == "manage", nil
}

func (m *mockService) Permissions(role string) ([]Permission, error) {
	return []Permission{{Resource: ResourceLeave, Action: "read"}}, m.err
}

func setupRouter(svc Service, role domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	withActor := func(c *gin.Context) {
		middleware.SetActor(c, domain.Actor{ID: uuid.New(), Role: role})
		c.Next()
	}
	r.POST("/rbac/enforce", withActor, h.Enforce)
	r.GET("/rbac/permissions", withActor, h.Permissions)
	return r
}

func TestHandler_Enforce(t *testing.T) {
	t.Run("uses the caller role", func(t *testing.T) {
		svc := &mockService{}
		r := setupRouter(svc, domain.RoleHR)

		body, _ := json.Marshal(map[string]string{"role": "management", "resource": " holiday ", "action": "manage"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hr", svc.last.Role)
		assert.Equal(t, ResourceHoliday, svc.last.Resource)

		var resp struct {
			Data domain.EnforceResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Allowed)
	})

	t.Run("missing action", func(t *testing.T) {
		r := setupRouter(&mockService{}, domain.RoleHR)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBufferString(`{"resource":"leave"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("enforcer failure", func(t *testing.T) {
		r := setupRouter(&mockService{err: errors.New("boom")}, domain.RoleHR)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBufferString(`{"resource":"leave","action":"read"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_Permissions(t *testing.T) {
	r := setupRouter(&mockService{}, domain.RoleEmployee)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/permissions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resource":"leave"`)
}
