package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-fleetpay/internal/middleware"
	"go-fleetpay/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id_validated", "u-1")
		c.Set("role", "DRIVER")
		c.Next()
	})
	r.Use(middleware.ContextLogger(zap.New(core)))

	var seenRID, seenRole string
	r.GET("/ok", func(c *gin.Context) {
		seenRID = contextutil.GetRequestID(c.Request.Context())
		seenRole = contextutil.GetRole(c.Request.Context())
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	rid := "6f1c2f4e-9a51-4a0e-9b62-0f4f3c2f1a10"
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", rid)
	r.ServeHTTP(w, req)

	assert.Equal(t, rid, w.Header().Get("X-Request-ID"))
	assert.Equal(t, rid, seenRID)
	assert.Equal(t, "DRIVER", seenRole)
	assert.Equal(t, 1, logs.FilterMessage("request completed").Len())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Request-ID", "not a uuid\r\n")
	r.ServeHTTP(w, req)

	assert.NotEqual(t, "not a uuid\r\n", w.Header().Get("X-Request-ID"))
	rejected := logs.FilterMessage("request rejected").All()
	if assert.Len(t, rejected, 1) {
		assert.Equal(t, zapcore.WarnLevel, rejected[0].Level)
		assert.Equal(t, "u-1", rejected[0].ContextMap()["user_id"])
	}
}
