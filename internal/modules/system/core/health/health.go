package health

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/legalai/core/internal/pkg/cron"
	"github.com/legalai/core/internal/pkg/nativelog"
	"github.com/legalai/core/internal/pkg/response"
)

type logItem struct {
	Size     string `json:"size"`
	Filename string `json:"filename"`
	Index    int    `json:"index"`
	Created  int64  `json:"created"`
}

// Pinger checks a dependency. *redis.Client from internal/pkg/redis satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the components health reports on. Redis may be nil when disabled.
type Deps struct {
	Redis  Pinger
	Sched  *cron.Scheduler
	LogDir string
}

func RegisterRoutes(rg *gin.RouterGroup, deps Deps, authMW gin.HandlerFunc) {
	rg.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		redisState := "disabled"
		if deps.Redis != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Redis.Ping(ctx); err != nil {
				redisState = "down"
				status = "degraded"
				code = http.StatusServiceUnavailable
			} else {
				redisState = "ok"
			}
		}
		c.JSON(code, gin.H{
			"status": status,
			"redis":  redisState,
		})
	})

	adminHealth := rg.Group("/health", authMW)
	cronGroup := adminHealth.Group("/cron")
	{
		cronGroup.GET("", func(c *gin.Context) {
			items := deps.Sched.List()
			byName := make(map[string]cron.ListItem, len(items))
			for _, item := range items {
				byName[item.Name] = item
			}
			response.OK(c, byName)
		})

		cronGroup.POST("/run/:name", func(c *gin.Context) {
			name := c.Param("name")
			if _, _, err := deps.Sched.Status(name); err != nil {
				response.NotFoundMsg(c, err.Error())
				return
			}
			if err := deps.Sched.Run(c.Request.Context(), name); err != nil {
				c.JSON(http.StatusOK, gin.H{"ok": false, "message": err.Error()})
				return
			}
			response.OK(c, gin.H{"ok": true, "message": "job finished"})
		})
	}

	logGroup := adminHealth.Group("/log")
	{
		logGroup.GET("/list", func(c *gin.Context) {
			entries, err := os.ReadDir(deps.LogDir)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					response.OK(c, []logItem{})
					return
				}
				response.InternalError(c, err)
				return
			}

			items := make([]logItem, 0, len(entries))
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				items = append(items, logItem{
					Size:     humanize.IBytes(uint64(info.Size())),
					Filename: entry.Name(),
					Created:  info.ModTime().UnixMilli(),
				})
			}

			sort.Slice(items, func(i, j int) bool {
				return items[i].Created > items[j].Created
			})
			for i := range items {
				items[i].Index = i
			}
			response.OK(c, items)
		})

		logGroup.GET("", func(c *gin.Context) {
			path, ok := logPath(c, deps.LogDir)
			if !ok {
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				response.NotFoundMsg(c, "log file not exists")
				return
			}
			c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
		})

		logGroup.DELETE("", func(c *gin.Context) {
			path, ok := logPath(c, deps.LogDir)
			if !ok {
				return
			}
			// Today's file is held open by the logger, so it is truncated.
			today := filepath.Join(deps.LogDir, nativelog.TodayFilename(time.Now()))
			var err error
			if filepath.Clean(path) == filepath.Clean(today) {
				err = os.Truncate(path, 0)
			} else {
				err = os.Remove(path)
			}
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				response.InternalError(c, err)
				return
			}
			response.NoContent(c)
		})
	}
}

// logPath resolves ?filename= inside dir, writing a 400 when it is unusable.
func logPath(c *gin.Context, dir string) (string, bool) {
	filename := filepath.Base(strings.TrimSpace(c.Query("filename")))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		response.BadRequest(c, "filename must be string")
		return "", false
	}
	return filepath.Join(dir, filename), true
}
