package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/readmanga/server/internal/shared/logger"
)

const (
	// RateLimitRemaining is the header for remaining requests.
	RateLimitRemaining = "X-RateLimit-Remaining"
	// RateLimitLimit is the header for the limit.
	RateLimitLimit = "X-RateLimit-Limit"
	// RateLimitReset is the header for reset time.
	RateLimitReset = "X-RateLimit-Reset"
	// RetryAfter is the header for retry time.
	RetryAfter = "Retry-After"
)

// LimitResult is the outcome of a single limiter check.
type LimitResult struct {
	Allowed   bool
	Remaining int64
	ResetAt   int64
	Limit     int64
}

// Limiter checks a key against a request budget.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*LimitResult, error)
}

// RateLimitConfig holds rate limit configuration.
type RateLimitConfig struct {
	// Prefix namespaces keys so different route groups keep separate budgets.
	Prefix string
	Limit  int
	Window time.Duration
	// KeyFunc generates the rate limit key from request.
	// Default uses client IP.
	KeyFunc func(*gin.Context) string
	Message string
}

// RateLimit returns a middleware that limits requests using the given limiter.
// A nil limiter disables limiting.
func RateLimit(limiter Limiter, cfg RateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string {
			return c.ClientIP()
		}
	}
	if cfg.Message == "" {
		cfg.Message = "Too many requests from this IP, please try again later."
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := "ratelimit:" + cfg.Prefix + ":" + cfg.KeyFunc(c)
		res, err := limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			// Fail open on limiter errors.
			if log != nil {
				log.Warn("rate limit check failed", "key", key, logger.Err(err))
			}
			c.Next()
			return
		}

		c.Header(RateLimitLimit, strconv.FormatInt(res.Limit, 10))
		c.Header(RateLimitRemaining, strconv.FormatInt(res.Remaining, 10))
		c.Header(RateLimitReset, strconv.FormatInt(res.ResetAt, 10))

		if !res.Allowed {
			c.Header(RetryAfter, strconv.Itoa(int(cfg.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": cfg.Message,
			})
			return
		}

		c.Next()
	}
}
