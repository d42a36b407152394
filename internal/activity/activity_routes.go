package activity

import (
	"go-fleetpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, mw middleware.Stack) {
	logs := r.Group("/activity-logs")
	logs.Use(mw.Protected()...)
	{
		logs.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "activity", "read"),
			handler.List,
		)
		logs.DELETE("",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(mw.RBAC, "activity", "delete"),
			handler.Purge,
		)
	}
}
