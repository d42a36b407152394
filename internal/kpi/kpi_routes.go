package kpi

import (
	"go-fleetpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, mw middleware.Stack) {
	reports := r.Group("/kpi/reports")
	reports.Use(mw.Protected()...)
	{
		reports.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "kpi", "read"),
			handler.List,
		)
		reports.POST("",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(mw.RBAC, "kpi", "upload"),
			handler.Upload,
		)
	}
}
