package rate

import (
	"go-fleetpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, mw middleware.Stack) {
	rates := r.Group("/rates")
	rates.Use(mw.Protected()...)
	{
		rates.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "rate", "read"),
			handler.GetAll,
		)
		rates.GET("/match",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "rate", "read"),
			handler.Match,
		)
		rates.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "rate", "read"),
			handler.GetByID,
		)
		rates.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "rate", "create"),
			middleware.Idempotency(mw.Redis),
			handler.Create,
		)
		rates.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "rate", "update"),
			handler.Update,
		)
		rates.DELETE("/:id",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(mw.RBAC, "rate", "delete"),
			handler.Delete,
		)
	}
}
