package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/legalai/core/internal/middleware"
	"github.com/legalai/core/internal/modules/analysis"
	"github.com/legalai/core/internal/modules/assist"
	"github.com/legalai/core/internal/modules/auth/auth"
	"github.com/legalai/core/internal/modules/processing/ai"
	"github.com/legalai/core/internal/modules/site"
	"github.com/legalai/core/internal/modules/system/core/health"
	"github.com/legalai/core/internal/modules/translation"
	"github.com/legalai/core/internal/pkg/response"
)

const apiPrefix = "/api"

// Version is overridden at build time with -ldflags.
var Version = "dev"

func (a *App) registerRoutes() {
	r := a.router
	authMW := middleware.AdminAuth(a.signer)

	pages, err := site.New()
	if err != nil {
		// Pages are embedded, so this only fails on a broken build.
		panic(err)
	}
	pages.RegisterRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, apiPrefix+"/") {
			response.NotFound(c)
			return
		}
		pages.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "legalai",
		"version":  Version,
		"homepage": "https://github.com/legalai/core",
	}

	api := r.Group(apiPrefix)

	// Infrastructure
	deps := health.Deps{Sched: a.sched, LogDir: a.cfg.LogDir()}
	if a.rc != nil {
		deps.Redis = a.rc
	}
	health.RegisterRoutes(api, deps, authMW)

	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  uptimeText(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	// Admin
	auth.NewHandler(auth.NewService(a.signer, a.cfg.Admin.PasswordHash, a.cfg.Admin.TokenTTL)).RegisterRoutes(api, authMW)

	// AI providers
	aiSvc := ai.NewService(a.cfg.AI, a.logger)
	ai.NewHandler(aiSvc).RegisterRoutes(api, authMW)

	// Document analysis
	a.analysis = a.newAnalysisCache()
	analysisSvc := analysis.NewService(a.analysis, aiSvc, a.logger,
		analysis.WithPageSelection(a.cfg.AnalysisCache.HonorPageSelection))
	analysis.NewHandler(analysisSvc, a.cfg.UploadLimit()).RegisterRoutes(api, authMW)

	// Translation
	translationSvc := translation.NewService(a.cfg.Translator, a.cfg.Language, a.logger)
	translation.NewHandler(translationSvc, a.cfg.UploadLimit()).RegisterRoutes(api)

	// Viewer assistant
	assist.NewHandler(assist.NewService(aiSvc, a.logger)).RegisterRoutes(api)
}

func (a *App) newAnalysisCache() *analysis.Cache {
	cc := a.cfg.AnalysisCache
	var store analysis.Store
	switch cc.Backend {
	case "redis":
		store = analysis.NewRedisStore(a.rc, analysis.DefaultRedisPrefix, cc.TTL)
	default:
		store = analysis.NewMemoryStore(cc.MaxEntries, cc.TTL)
	}
	a.logger.Info("analysis cache ready",
		zap.String("backend", cc.Backend),
		zap.Int("maxEntries", cc.MaxEntries),
		zap.Duration("ttl", cc.TTL),
	)
	return analysis.NewCache(store, cc.Backend, cc.MaxEntries, cc.TTL, a.logger)
}
