package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/legalai/core/internal/config"
	"github.com/legalai/core/internal/modules/analysis"
	pkgcron "github.com/legalai/core/internal/pkg/cron"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, cache *analysis.Cache, cfg *config.AppConfig, logger *zap.Logger) error {
	cronLogger := logger.Named("CronService")

	jobs := []pkgcron.Job{
		{
			Name:        "sweep_analysis_cache",
			Description: "Drop expired analysis cache entries",
			Interval:    10 * time.Minute,
			Fn: func(ctx context.Context) error {
				if cfg.AnalysisCache.TTL <= 0 {
					return nil
				}
				removed, err := cache.Sweep(ctx)
				if err != nil {
					cronLogger.Warn("analysis cache sweep failed", zap.Error(err))
					return err
				}
				if removed > 0 {
					cronLogger.Info("analysis cache swept", zap.Int("removed", removed))
				}
				return nil
			},
		},
		{
			Name:        "report_cache_stats",
			Description: "Log analysis cache statistics",
			Interval:    time.Hour,
			Fn: func(ctx context.Context) error {
				stats, err := cache.Stats(ctx)
				if err != nil {
					return err
				}
				cronLogger.Info("analysis cache stats",
					zap.Int("entries", stats.Entries),
					zap.Int64("hits", stats.Hits),
					zap.Int64("misses", stats.Misses),
					zap.Int64("evictions", stats.Evictions),
					zap.Float64("hitRate", stats.HitRate),
				)
				return nil
			},
		},
	}
	for _, job := range jobs {
		if err := sched.Register(job); err != nil {
			return err
		}
	}
	return nil
}
