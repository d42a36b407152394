package vehicle

import (
	"go-fleetpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, mw middleware.Stack) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(mw.Protected()...)
	{
		vehicles.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "vehicle", "read"),
			handler.GetAll,
		)
		vehicles.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "vehicle", "read"),
			handler.GetByID,
		)
		vehicles.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "vehicle", "create"),
			middleware.Idempotency(mw.Redis),
			handler.Create,
		)
		vehicles.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "vehicle", "update"),
			handler.Update,
		)
		vehicles.DELETE("/:id",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(mw.RBAC, "vehicle", "delete"),
			handler.Delete,
		)
	}
}
