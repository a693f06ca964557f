package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/api/transport"
	"github.com/faxmemaybe/backend/domain"
	"github.com/faxmemaybe/backend/pkg/httpcontext"
	todoUC "github.com/faxmemaybe/backend/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// Submit runs the full submission pipeline and reports a single definitive
// outcome. A failure response does not imply nothing happened upstream.
func (h *TodoHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req transport.TodoSubmissionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todo, err := h.uc.Submit(stdCtx, req.Submission())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.SubmitResponse{
		Success:   true,
		ID:        todo.ID,
		TodoistID: todo.TodoistID,
		URL:       todo.URL,
	})
}

func (h *TodoHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, todos)
}

func (h *TodoHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.localID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todo, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, todo)
}

func (h *TodoHandler) Count(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	count, err := h.uc.Count(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.CountResponse{Count: count})
}

func (h *TodoHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, stats)
}

// Complete is a GET on purpose: the printed ticket carries a QR code that a
// phone camera opens directly, and cameras only issue GETs.
func (h *TodoHandler) Complete(ctx *fasthttp.RequestCtx) {
	h.action(ctx, h.uc.Complete)
}

func (h *TodoHandler) Incomplete(ctx *fasthttp.RequestCtx) {
	h.action(ctx, h.uc.Reopen)
}

func (h *TodoHandler) Delete(ctx *fasthttp.RequestCtx) {
	h.action(ctx, h.uc.Delete)
}

func (h *TodoHandler) Labels(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondJSON(ctx, http.StatusOK, h.uc.Labels(stdCtx))
}

func (h *TodoHandler) action(ctx *fasthttp.RequestCtx, fn func(ctx context.Context, localID string) (bool, error)) {
	id, ok := h.localID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	acked, err := fn(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.ActionResponse{Success: acked})
}

func (h *TodoHandler) localID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{Error: "missing todo id"})
		return "", false
	}
	return id, true
}
