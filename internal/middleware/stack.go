package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stack carries the shared middleware dependencies handed to every module's
// RegisterRoutes.
type Stack struct {
	Auth   gin.HandlerFunc
	RBAC   RBACService
	Redis  *redis.Client
	Logger *zap.Logger
}

// Protected returns the handlers every authenticated group starts with.
func (s Stack) Protected() []gin.HandlerFunc {
	return []gin.HandlerFunc{s.Auth, ContextLogger(s.Logger)}
}
