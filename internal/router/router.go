package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/faxmemaybe/backend/api/handler"
)

// Handlers groups the endpoint handlers wired by the composition root.
type Handlers struct {
	Todo    *apiHandler.TodoHandler
	Webhook *apiHandler.WebhookHandler
	Health  *apiHandler.HealthHandler
}

// Middleware groups the cross-cutting wrappers. RateLimit covers every /api
// route; RequireKey additionally guards the admin operations.
type Middleware struct {
	RequireKey func(fasthttp.RequestHandler) fasthttp.RequestHandler
	RateLimit  func(fasthttp.RequestHandler) fasthttp.RequestHandler
}

func New(handlers Handlers, mw Middleware) *router.Router {
	r := router.New()

	limited := mw.RateLimit
	if limited == nil {
		limited = func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}
	keyed := func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		if mw.RequireKey == nil {
			return limited(next)
		}
		return limited(mw.RequireKey(next))
	}

	r.GET("/api/health", limited(handlers.Health.Check))

	// Public submission and read surface.
	r.POST("/api/todos", limited(handlers.Todo.Submit))
	r.GET("/api/todos/count", limited(handlers.Todo.Count))
	r.GET("/api/todos/stats", limited(handlers.Todo.Stats))
	r.GET("/api/todos/{id}", limited(handlers.Todo.Get))
	r.GET("/api/todos/{id}/complete", limited(handlers.Todo.Complete))
	r.GET("/api/labels", limited(handlers.Todo.Labels))

	// Admin operations behind the static key.
	r.GET("/api/todos", keyed(handlers.Todo.List))
	r.PATCH("/api/todos/{id}/incomplete", keyed(handlers.Todo.Incomplete))
	r.DELETE("/api/todos/{id}", keyed(handlers.Todo.Delete))

	// Signature-authenticated tracker events.
	r.POST("/api/webhooks/todoist", limited(handlers.Webhook.Receive))

	return r
}
