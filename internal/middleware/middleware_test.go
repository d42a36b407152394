package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-fleetpay/internal/auth/token"
	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/middleware"
	"go-fleetpay/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type apiEnvelope struct {
	Ok    bool `json:"ok"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

type fakeSessions struct {
	active bool
	err    error
}

func (f fakeSessions) IsActiveSession(ctx context.Context, userID, sid string) (bool, error) {
	return f.active, f.err
}

type fakeRBAC struct{ allowed bool }

func (f fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	return f.allowed, nil
}

const secret = "test-secret"

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	all := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": contextutil.GetUserID(c.Request.Context()),
			"role":    c.GetString("role"),
		})
	})
	r.POST("/x", all...)
	r.GET("/x", all...)
	return r
}

func do(r http.Handler, method, bearer string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthMiddleware(t *testing.T) {
	valid, _ := token.Sign(secret, "u-1", "DRIVER", "sid-1", time.Hour, time.Now())

	t.Run("missing token", func(t *testing.T) {
		w := do(newRouter(middleware.AuthMiddleware(secret, fakeSessions{active: true})), http.MethodGet, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decode(t, w).Error.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, _ := token.Sign(secret, "u-1", "DRIVER", "sid-1", time.Minute, time.Now().Add(-time.Hour))
		w := do(newRouter(middleware.AuthMiddleware(secret, fakeSessions{active: true})), http.MethodGet, expired, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_EXPIRED", decode(t, w).Error.Code)
	})

	t.Run("superseded session", func(t *testing.T) {
		w := do(newRouter(middleware.AuthMiddleware(secret, fakeSessions{active: false})), http.MethodGet, valid, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "SESSION_SUPERSEDED", decode(t, w).Error.Code)
	})

	t.Run("session store down", func(t *testing.T) {
		w := do(newRouter(middleware.AuthMiddleware(secret, fakeSessions{err: errors.New("down")})), http.MethodGet, valid, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		w := do(newRouter(middleware.AuthMiddleware(secret, fakeSessions{active: true})), http.MethodGet, valid, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"u-1","role":"DRIVER"}`, w.Body.String())
	})
}

func TestRBACAuthorize(t *testing.T) {
	valid, _ := token.Sign(secret, "u-1", "FINANCE", "sid-1", time.Hour, time.Now())
	auth := middleware.AuthMiddleware(secret, nil)

	w := do(newRouter(auth, middleware.RBACAuthorize(fakeRBAC{allowed: false}, "shipment", "create")), http.MethodGet, valid, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w).Error.Code)

	w = do(newRouter(auth, middleware.RBACAuthorize(fakeRBAC{allowed: true}, "payroll", "read")), http.MethodGet, valid, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitByUser(t *testing.T) {
	valid, _ := token.Sign(secret, "u-1", "ADMIN", "sid-1", time.Hour, time.Now())
	r := newRouter(middleware.AuthMiddleware(secret, nil), middleware.RateLimitByUser(0.001, 1))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, valid, nil).Code)
	w := do(r, http.MethodGet, valid, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decode(t, w).Error.Code)
}

func TestRateLimitByIP_MemoryStore(t *testing.T) {
	instance, err := middleware.NewIPLimiter(nil, "2-M", "test")
	assert.NoError(t, err)
	r := newRouter(middleware.RateLimitByIP(instance, nil))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "", nil).Code)
	w := do(r, http.MethodPost, "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := newRouter(middleware.Idempotency(rdb))

	mock.ExpectGet("idemp:/x::key-1").SetVal(`{"status":201,"body":{"ok":true,"data":{"id":"p-1"}}}`)

	w := do(r, http.MethodPost, "", map[string]string{"Idempotency-Key": "key-1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, `{"ok":true,"data":{"id":"p-1"}}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlight(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := newRouter(middleware.Idempotency(rdb))

	mock.ExpectGet("idemp:/x::key-2").RedisNil()
	mock.ExpectSetNX("idemp:/x::key-2:lock", "locked", 30*time.Second).SetVal(false)

	w := do(r, http.MethodPost, "", map[string]string{"Idempotency-Key": "key-2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PROCESSING", decode(t, w).Error.Code)
}

func TestIdempotency_SkipsReads(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := newRouter(middleware.Idempotency(rdb))

	w := do(r, http.MethodGet, "", map[string]string{"Idempotency-Key": "key-3"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
