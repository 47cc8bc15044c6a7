package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/legalai/core/internal/pkg/response"
)

const rateLimitPrefix = "legalai:rate_limit:"

// Counter increments a windowed counter and returns the new value.
// *redis.Client from internal/pkg/redis satisfies it.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows max requests per client IP per fixed window. Admin
// requests and counter failures pass through.
func RateLimit(counter Counter, max int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	if window <= 0 {
		window = time.Second
	}
	retryAfter := strconv.Itoa(int((window + time.Second - 1) / time.Second))
	return func(c *gin.Context) {
		if counter == nil || max <= 0 || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("%s%s:%d", rateLimitPrefix, ip, bucket)

		count, err := counter.Hit(c.Request.Context(), key, window+time.Second)
		if err != nil {
			if log != nil {
				log.Warn("rate limit counter failed", zap.Error(err))
			}
			c.Next()
			return
		}

		if count > int64(max) {
			c.Header("Retry-After", retryAfter)
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
