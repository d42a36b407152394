package auth

import (
	autherrors "go-fleetpay/internal/auth/errors"
	"go-fleetpay/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, mw middleware.Stack, loginLimiter *limiter.Limiter) {
	auth := r.Group("/auth")
	{
		login := []gin.HandlerFunc{}
		if loginLimiter != nil {
			login = append(login, middleware.RateLimitByIP(loginLimiter, autherrors.ErrTooManyAttempts))
		}
		auth.POST("/login", append(login, handler.Login)...)

		protected := auth.Group("")
		protected.Use(mw.Protected()...)
		protected.GET("/me", middleware.RateLimitByUser(2, 5), handler.Me)
		protected.POST("/logout", handler.Logout)
	}
}
