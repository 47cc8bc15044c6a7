package app

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/legalai/core/internal/config"
	"github.com/legalai/core/internal/middleware"
	"github.com/legalai/core/internal/modules/analysis"
)

// newCORS lets the web viewer read the cache and request id headers. In dev,
// or with no allowed_origins configured, every origin is accepted.
func newCORS(cfg *config.AppConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", analysis.CacheHeader, middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	patterns := cfg.AllowedOrigins
	if cfg.IsDev() || len(patterns) == 0 {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOriginFunc = func(origin string) bool { return originAllowed(patterns, origin) }
	}
	return cors.New(c)
}

// originAllowed matches the origin's host[:port] against patterns of the form
// "legalai.app", "*.legalai.app" or "localhost:*".
func originAllowed(patterns []string, origin string) bool {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	for _, p := range patterns {
		switch {
		case p == host:
			return true
		case strings.HasPrefix(p, "*.") && strings.HasSuffix(host, p[1:]):
			return true
		case strings.HasSuffix(p, ":*") && strings.HasPrefix(host, strings.TrimSuffix(p, "*")):
			return true
		}
	}
	return false
}
