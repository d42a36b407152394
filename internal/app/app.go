package app

import (
	"errors"
	"net/http"

	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/shared/config"
	"go-fleetpay/internal/shared/connection"
	"go-fleetpay/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds what main needs after the routes are registered.
type App struct {
	Recorder activity.Recorder
	close    []func() error
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.close) - 1; i >= 0; i-- {
		errs = append(errs, a.close[i]())
	}
	return errors.Join(errs...)
}

func BuildApp(router *gin.Engine, cfg config.Config) (*App, error) {
	logger := zap.L()
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	// 1. Setup Infrastructure
	db, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	a := &App{close: []func() error{sqlDB.Close}}

	if err := Migrate(db); err != nil {
		_ = a.Close()
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis, 5)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.close = append(a.close, rdb.Close)
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_HOST not set, running without cache and idempotency")
	}

	router.GET("/healthz", func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database unreachable", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	// 2. Register Modules & Routes
	recorder, err := registerModules(router, cfg, db, rdb, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Recorder = recorder

	return a, nil
}
