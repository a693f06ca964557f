package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/api/transport"
	"github.com/faxmemaybe/backend/internal/todoist"
	"github.com/faxmemaybe/backend/pkg/httpcontext"
	webhookUC "github.com/faxmemaybe/backend/usecase/webhook"
)

type WebhookHandler struct {
	baseHandler
	uc     *webhookUC.UseCase
	secret string
}

func NewWebhookHandler(uc *webhookUC.UseCase, secret string, adapter *httpcontext.Adapter, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		secret:      secret,
	}
}

// Receive authenticates and processes one tracker event. The sender header
// and the HMAC signature over the raw body are both checked before the body
// is parsed at all. Once the signature passes, every outcome is a 200: the
// sender retries failed deliveries and a local processing problem must not
// turn into a redelivery storm.
func (h *WebhookHandler) Receive(ctx *fasthttp.RequestCtx) {
	if string(ctx.Request.Header.UserAgent()) != todoist.SenderUserAgent {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.ErrorResponse{Error: "unauthorized"})
		return
	}

	body := ctx.PostBody()
	signature := string(ctx.Request.Header.Peek(todoist.SignatureHeader))
	if !todoist.VerifySignature(body, signature, h.secret) {
		h.logger.Warn("webhook signature mismatch",
			zap.Int("body_bytes", len(body)))
		h.respondJSON(ctx, http.StatusUnauthorized, transport.ErrorResponse{Error: "unauthorized"})
		return
	}

	var event todoist.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("webhook body unparseable after valid signature", zap.Error(err))
		h.respondJSON(ctx, http.StatusOK, transport.Ack{OK: true})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.HandleEvent(stdCtx, &event); err != nil {
		h.logger.Error("webhook event processing failed",
			zap.String("event", event.EventName),
			zap.Error(err))
	}
	h.respondJSON(ctx, http.StatusOK, transport.Ack{OK: true})
}
