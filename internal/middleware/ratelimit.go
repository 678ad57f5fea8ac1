package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samia-tarot/panel/internal/cache"
	"github.com/samia-tarot/panel/pkg/errors"
	"github.com/samia-tarot/panel/pkg/response"
)

// RateLimit limits requests per (clientIP, path) within a fixed window using
// the shared cache store. When the store errors the request is allowed
// through: rate limiting degrades open rather than taking the panel down.
func RateLimit(store cache.Store, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP() + "|" + c.FullPath()
		count, resetIn, err := store.IncrementWithTTL(c.Request.Context(), key, window)
		if err != nil {
			c.Next()
			return
		}

		remaining := maxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > int64(maxRequests) {
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}
