package middleware

import (
	"crypto/subtle"
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/api/transport"
)

// APIKeyHeader is the admin authentication header.
const APIKeyHeader = "X-API-KEY"

// HasValidAPIKey reports whether the request carries the configured admin
// key. An empty configured key matches nothing, so protected endpoints fail
// closed when the deployment forgot to set one.
func HasValidAPIKey(ctx *fasthttp.RequestCtx, key string) bool {
	if key == "" {
		return false
	}
	presented := ctx.Request.Header.Peek(APIKeyHeader)
	return subtle.ConstantTimeCompare(presented, []byte(key)) == 1
}

// RequireAPIKey guards admin endpoints with a static shared key.
func RequireAPIKey(key string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if !HasValidAPIKey(ctx, key) {
				logger.Warn("rejected request with missing or bad api key",
					zap.String("path", string(ctx.Path())))
				respondUnauthorized(ctx)
				return
			}
			next(ctx)
		}
	}
}

func respondUnauthorized(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	body, _ := json.Marshal(transport.ErrorResponse{Error: "unauthorized"})
	ctx.SetBody(body)
}
