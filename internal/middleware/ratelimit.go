package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/api/transport"
)

// RateLimiter applies a fixed-window per-client-IP quota backed by Redis.
// The counter lives in Redis so the quota holds across replicas. Every
// failure mode is open: a nil client, a zero quota, or a Redis error all let
// the request through rather than taking the API down with the limiter.
type RateLimiter struct {
	client *redislib.Client
	limit  int
	window time.Duration
	exempt func(ctx *fasthttp.RequestCtx) bool
	logger *zap.Logger
}

// NewRateLimiter builds a limiter. exempt marks trusted callers that bypass
// the quota entirely; nil means nobody is exempt.
func NewRateLimiter(client *redislib.Client, limit int, window time.Duration, exempt func(ctx *fasthttp.RequestCtx) bool, logger *zap.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		exempt: exempt,
		logger: logger,
	}
}

// Wrap applies the limiter to a handler.
func (rl *RateLimiter) Wrap(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if rl == nil || rl.client == nil || rl.limit <= 0 {
		return next
	}
	return func(ctx *fasthttp.RequestCtx) {
		if rl.exempt != nil && rl.exempt(ctx) {
			next(ctx)
			return
		}
		if !rl.allow(ctx) {
			respondRateLimited(ctx)
			return
		}
		next(ctx)
	}
}

func (rl *RateLimiter) allow(ctx *fasthttp.RequestCtx) bool {
	key := rl.windowKey(clientIP(ctx))

	rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	count, err := rl.client.Incr(rctx, key).Result()
	if err != nil {
		rl.logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
		return true
	}
	if count == 1 {
		rl.client.Expire(rctx, key, rl.window)
	}
	return count <= int64(rl.limit)
}

// windowKey buckets time into fixed windows so all requests from one IP in
// the same window share a counter. The bucket math stays in nanoseconds so
// sub-second windows divide by the window itself, never by zero.
func (rl *RateLimiter) windowKey(ip string) string {
	bucket := time.Now().UnixNano() / int64(rl.window)
	return fmt.Sprintf("ratelimit:%s:%d", ip, bucket)
}

func clientIP(ctx *fasthttp.RequestCtx) string {
	addr := ctx.RemoteAddr()
	if addr == nil {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return host
	}
	return addr.String()
}

func respondRateLimited(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
	body, _ := json.Marshal(transport.ErrorResponse{Error: "rate limit exceeded"})
	ctx.SetBody(body)
}
