package api

import (
	"logistics-route-service/internal/api/dto"
	"logistics-route-service/internal/config"
	"logistics-route-service/internal/platform/audit"
	"logistics-route-service/internal/platform/obs"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// requestContextMiddleware attaches the audit context and request id to the
// request context and echoes the request id back to the caller.
func requestContextMiddleware(defaultCountry string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac := audit.FromRequest(c.Request, defaultCountry)

		ctx := audit.WithContext(c.Request.Context(), ac)
		ctx = obs.WithRequestID(ctx, ac.RequestID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(audit.HeaderRequestID, ac.RequestID)
		c.Next()
	}
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		ac := audit.FromContext(c.Request.Context())
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("req_id", ac.RequestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", ac.IP),
			zap.String("country", ac.Country),
			zap.Int("body_size", c.Writer.Size()),
		}

		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}

func recoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic recovered",
					zap.String("req_id", obs.RequestID(c.Request.Context())),
					zap.Any("error", recovered),
					zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error: "internal server error",
					Code:  "internal_error",
				})
			}
		}()

		c.Next()
	}
}

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client ip. Buckets idle for
// longer than idleTTL are dropped on the next sweep.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(r float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Limit(r),
		burst:    burst,
		idleTTL:  limiterIdleTTL,
		now:      time.Now,
	}
}

func (rl *ipRateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= limiterSweepInterval {
		rl.sweep(now)
		rl.lastSweep = now
	}

	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep must be called with mu held.
func (rl *ipRateLimiter) sweep(now time.Time) {
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.idleTTL {
			delete(rl.limiters, ip)
		}
	}
}

func rateLimitMiddleware(cfg config.RateLimitConfig, log *zap.Logger) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newIPRateLimiter(cfg.Rate, cfg.Burst)

	return func(c *gin.Context) {
		ip := audit.FromContext(c.Request.Context()).IP
		if ip == "" {
			ip = c.ClientIP()
		}

		if !limiter.get(ip).Allow() {
			log.Warn("rate limit exceeded",
				zap.String("req_id", obs.RequestID(c.Request.Context())),
				zap.String("client_ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "too many requests, please try again later",
				Code:  "rate_limit_exceeded",
			})
			return
		}

		c.Next()
	}
}
