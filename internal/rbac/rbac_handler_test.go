package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-fleetpay/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandler_EnforceUsesCallerRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := rbac.NewHandler(newService(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("role", "DRIVER")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/rbac/enforce",
		strings.NewReader(`{"role":"ADMIN","resource":"payroll","action":"close"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Enforce(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"allowed":false}}`, w.Body.String())
}

func TestHandler_MyPermissions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := rbac.NewHandler(newService(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("role", "ADMIN")
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/rbac/permissions", nil)

	h.MyPermissions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resource":"*"`)
}
