package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/legalai/core/internal/config"
	"github.com/legalai/core/internal/middleware"
	"github.com/legalai/core/internal/modules/analysis"
	pkgcron "github.com/legalai/core/internal/pkg/cron"
	jwtpkg "github.com/legalai/core/internal/pkg/jwt"
	pkgredis "github.com/legalai/core/internal/pkg/redis"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	rc       *pkgredis.Client
	signer   *jwtpkg.Signer
	analysis *analysis.Cache
	logger   *zap.Logger
	cancel   context.CancelFunc
	sched    *pkgcron.Scheduler
}

// New initializes the application: config → Redis → services → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	var rc *pkgredis.Client
	if cfg.Redis.Enable {
		var err error
		if rc, err = pkgredis.Connect(cfg.RedisURL); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	var signer *jwtpkg.Signer
	if cfg.Admin.JWTSecret != "" {
		var err error
		if signer, err = jwtpkg.NewSigner(cfg.Admin.JWTSecret); err != nil {
			return nil, fmt.Errorf("jwt: %w", err)
		}
	} else {
		logger.Warn("admin.jwt_secret is empty, admin routes are disabled")
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = cfg.UploadLimit()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.Use(newCORS(cfg))

	if cfg.RateLimit.Enable {
		if rc == nil {
			logger.Warn("rate_limit.enable is set but redis is disabled, rate limiting is off")
		} else {
			router.Use(middleware.RateLimit(rc, cfg.RateLimit.Max, cfg.RateLimit.Window, logger.Named("RateLimit")))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		cfg:    cfg,
		router: router,
		rc:     rc,
		signer: signer,
		logger: logger,
		cancel: cancel,
		sched:  pkgcron.New(logger.Named("CronService")),
	}
	app.registerRoutes()

	if err := registerCronJobs(app.sched, app.analysis, cfg, logger); err != nil {
		cancel()
		return nil, err
	}
	go app.sched.Start(ctx)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes Redis.
func (a *App) Shutdown() {
	a.cancel()
	if a.rc != nil {
		if err := a.rc.Close(); err != nil {
			a.logger.Warn("closing redis", zap.Error(err))
		}
	}
}

// processStart is the reference point for /api/uptime.
var processStart = time.Now()
