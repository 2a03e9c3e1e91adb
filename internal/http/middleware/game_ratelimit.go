package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GameRateLimit limits ledger writes per wallet address (not per IP) using
// Redis. action separates the budgets, e.g. "create" and "reveal". Requires
// JWT middleware to run before this.
func GameRateLimit(action string, maxCalls int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		addr, ok := Address(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "game_rl:" + action + ":" + addr.Hex() + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-GameRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-GameRateLimit-Limit", strconv.Itoa(maxCalls))
		c.Header("X-GameRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxCalls)-val), 10))

		if val > int64(maxCalls) {
			RLBlocked.WithLabelValues("game:" + action).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded for " + action,
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("game:" + action).Inc()
		c.Next()
	}
}
