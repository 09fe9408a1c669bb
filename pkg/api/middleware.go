package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/validation"
)

// RequestIDHeader carries the correlation id in and out.
const RequestIDHeader = "X-Request-ID"

const walletKey = "wallet"

// RequestID adopts the caller's X-Request-ID or generates one, stores it in
// the request context for logging and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logging.WithCorrelationID(c.Request.Context(), c.GetHeader(RequestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, logging.GetCorrelationID(ctx))
		c.Next()
	}
}

// AccessLog logs one line per request after it completes.
func AccessLog(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// RateLimit answers 429 once a client IP exhausts its bucket.
func RateLimit(limiter *validation.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody(c, "rate limit exceeded"))
			return
		}
		c.Next()
	}
}

// walletParam validates :wallet and stores the normalized address.
func walletParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := validation.ValidateWallet(c.Param("wallet"))
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(walletKey, wallet)
		c.Next()
	}
}
