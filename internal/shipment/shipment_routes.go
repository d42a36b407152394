package shipment

import (
	"go-fleetpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, mw middleware.Stack) {
	shipments := r.Group("/shipments")
	shipments.Use(mw.Protected()...)
	{
		shipments.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "read"),
			handler.GetAll,
		)
		shipments.GET("/export",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "export"),
			handler.Export,
		)
		shipments.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "create"),
			middleware.Idempotency(mw.Redis),
			handler.Create,
		)
		shipments.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "read"),
			handler.GetByID,
		)
		shipments.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "update"),
			handler.Update,
		)
		shipments.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "delete"),
			handler.Delete,
		)
		shipments.POST("/:id/cancel",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "update"),
			handler.Cancel,
		)
		shipments.POST("/:id/archive",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "archive"),
			handler.Archive,
		)
		shipments.POST("/:id/unarchive",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "archive"),
			handler.Unarchive,
		)

		// field clients poll status every few seconds
		shipments.GET("/:id/status",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "read"),
			handler.GetStatus,
		)
		shipments.PUT("/:id/status",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "status"),
			middleware.Idempotency(mw.Redis),
			handler.UpdateStatus,
		)
		shipments.GET("/:id/logs",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(mw.RBAC, "shipment", "read"),
			handler.ListLogs,
		)
	}
}
