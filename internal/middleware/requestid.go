package middleware

import (
	"log/slog"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
	requestIDAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	requestIDLength     = 21
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

var requestIDFallbackCounter atomic.Uint64

// RequestIDConfig controls request-id reuse.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed incoming X-Request-ID.
	TrustUpstream bool
}

// RequestID assigns a fresh request ID to every request. See RequestIDWithConfig.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig assigns a request ID and exposes it three ways: the gin
// context key "request_id", the X-Request-ID response header, and a logger
// context attribute so every slog call made with the request context carries it.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if cfg.TrustUpstream {
			if upstream := c.GetHeader(requestIDHeader); requestIDPattern.MatchString(upstream) {
				id = upstream
			}
		}
		if id == "" {
			id = generateRequestID()
		}

		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)
		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String(requestIDContextKey, id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get(requestIDContextKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

func generateRequestID() string {
	id, err := nanoid.Generate(requestIDAlphabet, requestIDLength)
	if err != nil {
		// entropy source failed; time plus a counter stays unique per process
		return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" +
			strconv.FormatUint(requestIDFallbackCounter.Add(1), 36)
	}
	return id
}
