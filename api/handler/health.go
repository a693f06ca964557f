package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/internal/infrastructure/monitor"
	"github.com/faxmemaybe/backend/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check reports dependency health. Only the mapping store is load-bearing
// enough to mark the service unavailable: a missing limiter backend fails
// open and a broken dispatch buffer only degrades retry coverage.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"postgresql": status.PostgreSQL,
			"redis":      status.Redis,
			"dispatch_buffer": map[string]interface{}{
				"online":         status.DispatchBuffer,
				"pending_prints": status.PendingPrints,
			},
		},
	}

	if status.PostgreSQL {
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}
	payload["status"] = "degraded"
	h.respondJSON(ctx, http.StatusServiceUnavailable, payload)
}
