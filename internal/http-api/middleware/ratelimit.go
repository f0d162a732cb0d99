package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit throttles requests per client IP. Applied to the auth
// endpoints, which issue outbound mail.
func RateLimit(limit float64, burst int) gin.HandlerFunc {
	var limiters sync.Map

	return func(c *gin.Context) {
		ip := c.ClientIP()

		value, _ := limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(limit), burst))
		limiter := value.(*rate.Limiter)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
