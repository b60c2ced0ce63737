package api

import (
	"Mnemo/internal/config"
	"Mnemo/pkg/ratelimiter"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware 创建一个 Gin 中间件，使用令牌桶算法对写入接口限流。
func RateLimitMiddleware(cfg config.RateLimiterConfig) gin.HandlerFunc {
	limiter := ratelimiter.NewTokenBucket(cfg.Rate, cfg.Capacity)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
