package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
)

func TestHasValidAPIKey(t *testing.T) {
	tests := []struct {
		name      string
		configure string
		present   string
		want      bool
	}{
		{"matching key", "s3cret", "s3cret", true},
		{"wrong key", "s3cret", "guess", false},
		{"missing header", "s3cret", "", false},
		{"unconfigured key fails closed", "", "s3cret", false},
		{"unconfigured key and empty header", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &fasthttp.RequestCtx{}
			if tt.present != "" {
				ctx.Request.Header.Set(APIKeyHeader, tt.present)
			}
			if got := HasValidAPIKey(ctx, tt.configure); got != tt.want {
				t.Fatalf("HasValidAPIKey = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequireAPIKeyBlocksAndPasses(t *testing.T) {
	called := false
	handler := RequireAPIKey("s3cret", nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
	})

	ctx := &fasthttp.RequestCtx{}
	handler(ctx)
	if called {
		t.Fatal("handler ran without a key")
	}
	if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ctx.Response.StatusCode())
	}

	ctx = &fasthttp.RequestCtx{}
	ctx.Request.Header.Set(APIKeyHeader, "s3cret")
	handler(ctx)
	if !called {
		t.Fatal("handler did not run with a valid key")
	}
}

func TestWindowKeyHandlesSubSecondWindows(t *testing.T) {
	for _, window := range []time.Duration{500 * time.Millisecond, time.Millisecond, time.Second, time.Minute} {
		rl := NewRateLimiter(nil, 10, window, nil, nil)
		key := rl.windowKey("1.2.3.4")
		if !strings.HasPrefix(key, "ratelimit:1.2.3.4:") {
			t.Fatalf("window %v: malformed key %q", window, key)
		}
	}
}

func TestRateLimiterDisabledIsPassThrough(t *testing.T) {
	for _, rl := range []*RateLimiter{
		nil,
		NewRateLimiter(nil, 10, 0, nil, nil),
	} {
		called := false
		handler := rl.Wrap(func(ctx *fasthttp.RequestCtx) { called = true })
		handler(&fasthttp.RequestCtx{})
		if !called {
			t.Fatal("disabled limiter must not block requests")
		}
	}
}
