package app

import (
	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/auth"
	"go-fleetpay/internal/kpi"
	"go-fleetpay/internal/messaging/kafka"
	"go-fleetpay/internal/middleware"
	"go-fleetpay/internal/payroll"
	"go-fleetpay/internal/rate"
	"go-fleetpay/internal/rbac"
	"go-fleetpay/internal/rbac/infra"
	"go-fleetpay/internal/shared/config"
	"go-fleetpay/internal/shared/counter"
	"go-fleetpay/internal/shipment"
	"go-fleetpay/internal/user"
	"go-fleetpay/internal/vehicle"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) (activity.Recorder, error) {
	// --- Repositories ---
	activityRepo := activity.NewRepository(db)
	counterRepo := counter.NewRepository(db)
	kpiRepo := kpi.NewRepository(db)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(db)
	rateRepo := rate.NewRepository(db)
	shipmentRepo := shipment.NewRepository(db)
	userRepo := user.NewRepository(db)
	vehicleRepo := vehicle.NewRepository(db)

	recorder := activity.NewRecorder(activityRepo, logger)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(rbac.PolicyRows())
	if err != nil {
		return nil, err
	}
	rbacService := rbac.NewService(enforcer, logger)

	// --- Sessions ---
	sessions := auth.NewSessionStore(userRepo, rdb, cfg.Auth.TokenTTL, logger)
	loginLimiter, err := middleware.NewIPLimiter(rdb, "5-M", "fleetpay:login")
	if err != nil {
		return nil, err
	}

	// --- Services ---
	activityService := activity.NewService(activityRepo, recorder, logger)
	authService := auth.NewService(userRepo, sessions, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, recorder, logger)
	userService := user.NewService(userRepo, shipmentRepo, sessions, recorder, logger)
	vehicleService := vehicle.NewService(vehicleRepo, shipmentRepo, recorder, logger)
	rateService := rate.NewService(rateRepo, recorder, logger)
	shipmentService := shipment.NewService(shipment.Deps{
		DB:       db,
		Repo:     shipmentRepo,
		Users:    userRepo,
		Vehicles: vehicleRepo,
		Counter:  counterRepo,
		Outbox:   outboxRepo,
		Cache:    shipment.NewStatusCache(rdb, logger),
		Recorder: recorder,
		Location: cfg.App.Timezone,
	}, logger)
	payrollService := payroll.NewService(payroll.Deps{
		DB:       db,
		Repo:     payrollRepo,
		Rates:    rateRepo,
		Outbox:   outboxRepo,
		Recorder: recorder,
		Defaults: payroll.Defaults{
			DriverFee: cfg.Payroll.DefaultDriverFee,
			HelperFee: cfg.Payroll.DefaultHelperFee,
		},
		Location: cfg.App.Timezone,
	}, logger)
	kpiService := kpi.NewService(db, kpiRepo, payrollRepo, userRepo, recorder, logger)

	// --- Handlers ---
	activityHandler := activity.NewHandler(activityService, logger)
	authHandler := auth.NewHandler(authService, cfg.App.IsProduction(), int(cfg.Auth.TokenTTL.Seconds()), logger)
	kpiHandler := kpi.NewHandler(kpiService, logger)
	payrollHandler := payroll.NewHandler(payrollService, logger)
	rateHandler := rate.NewHandler(rateService, logger)
	rbacHandler := rbac.NewHandler(rbacService)
	shipmentHandler := shipment.NewHandler(shipmentService, logger)
	userHandler := user.NewHandler(userService, logger)
	vehicleHandler := vehicle.NewHandler(vehicleService, logger)

	mw := middleware.Stack{
		Auth:   middleware.AuthMiddleware(cfg.Auth.JWTSecret, sessions),
		RBAC:   rbacService,
		Redis:  rdb,
		Logger: logger,
	}

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, mw, loginLimiter)
		activity.RegisterRoutes(api, activityHandler, mw)
		kpi.RegisterRoutes(api, kpiHandler, mw)
		payroll.RegisterRoutes(api, payrollHandler, mw)
		rate.RegisterRoutes(api, rateHandler, mw)
		rbac.RegisterRoutes(api, rbacHandler, mw)
		shipment.RegisterRoutes(api, shipmentHandler, mw)
		user.RegisterRoutes(api, userHandler, mw)
		vehicle.RegisterRoutes(api, vehicleHandler, mw)
	}

	return recorder, nil
}
