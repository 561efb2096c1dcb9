package api

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/thanksrelay/relay/internal/auth"
)

const uidContextKey = "uid"

// AuthMiddleware resolves the bearer token to a user id and injects it
// into the request context. The middleware is the single owner of session
// resolution; handlers read the uid through CurrentUID.
func AuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token format"})
			return
		}

		user, err := authService.CurrentUser(c.Request.Context(), parts[1])
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(uidContextKey, user.UID)
		c.Next()
	}
}

// CurrentUID returns the authenticated user id set by AuthMiddleware
func CurrentUID(c *gin.Context) string {
	return c.GetString(uidContextKey)
}

// IPRateLimiter tracks a token bucket per client IP
type IPRateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

// NewIPRateLimiter creates an IP rate limiter
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		rps:      r,
		burst:    b,
	}
}

// GetLimiter returns the limiter for an IP, creating it on first sight
func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware throttles requests per client IP
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please wait"})
			return
		}
		c.Next()
	}
}
