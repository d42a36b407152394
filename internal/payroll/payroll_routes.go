package payroll

import (
	"go-fleetpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, mw middleware.Stack) {
	read := middleware.RateLimitByUser(3, 10)
	write := middleware.RateLimitByUser(0.5, 2)

	payroll := r.Group("/payroll")
	payroll.Use(mw.Protected()...)
	{
		payroll.GET("/periods", read, middleware.RBACAuthorize(mw.RBAC, "payroll", "read"), handler.ListPeriods)
		payroll.POST("/periods",
			write,
			middleware.RBACAuthorize(mw.RBAC, "payroll", "create"),
			middleware.Idempotency(mw.Redis),
			handler.CreatePeriod,
		)
		payroll.GET("/periods/:id", read, middleware.RBACAuthorize(mw.RBAC, "payroll", "read"), handler.GetPeriod)
		payroll.POST("/generate",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(mw.RBAC, "payroll", "generate"),
			middleware.Idempotency(mw.Redis),
			handler.Generate,
		)
		payroll.POST("/close",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(mw.RBAC, "payroll", "close"),
			handler.Close,
		)
		payroll.GET("/summary/:periodID", read, middleware.RBACAuthorize(mw.RBAC, "payroll", "read"), handler.Summary)
		payroll.GET("/ledger/:periodID/:userID", read, middleware.RBACAuthorize(mw.RBAC, "payslip", "read"), handler.Ledger)
		payroll.GET("/payslip/:periodID/:userID",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(mw.RBAC, "payslip", "read"),
			handler.Payslip,
		)
		payroll.GET("/export",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(mw.RBAC, "payroll", "export"),
			handler.Export,
		)
	}

	adjustments := r.Group("/adjustments")
	adjustments.Use(mw.Protected()...)
	{
		adjustments.GET("", read, middleware.RBACAuthorize(mw.RBAC, "adjustment", "read"), handler.ListAdjustments)
		adjustments.POST("",
			write,
			middleware.RBACAuthorize(mw.RBAC, "adjustment", "create"),
			middleware.Idempotency(mw.Redis),
			handler.CreateAdjustment,
		)
		adjustments.DELETE("/:id", write, middleware.RBACAuthorize(mw.RBAC, "adjustment", "void"), handler.VoidAdjustment)
	}

	payments := r.Group("/payments")
	payments.Use(mw.Protected()...)
	{
		payments.GET("", read, middleware.RBACAuthorize(mw.RBAC, "payment", "read"), handler.ListPayments)
		payments.POST("",
			write,
			middleware.RBACAuthorize(mw.RBAC, "payment", "create"),
			middleware.Idempotency(mw.Redis),
			handler.CreatePayment,
		)
		payments.DELETE("/:id", write, middleware.RBACAuthorize(mw.RBAC, "payment", "void"), handler.VoidPayment)
	}
}
