package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/faxmemaybe/backend/domain"
	"github.com/faxmemaybe/backend/internal/todoist"
	webhookUC "github.com/faxmemaybe/backend/usecase/webhook"
)

type stubMappings struct{}

func (stubMappings) Create(ctx context.Context, m *domain.Mapping) error { return nil }
func (stubMappings) GetByID(ctx context.Context, id string) (*domain.Mapping, error) {
	return nil, domain.ErrMappingNotFound
}
func (stubMappings) GetByTodoistID(ctx context.Context, todoistID string) (*domain.Mapping, error) {
	return nil, domain.ErrMappingNotFound
}
func (stubMappings) List(ctx context.Context) ([]domain.Mapping, error)          { return nil, nil }
func (stubMappings) Delete(ctx context.Context, id string) error                 { return nil }
func (stubMappings) DeleteByTodoistID(ctx context.Context, todoistID string) error { return nil }

const webhookSecret = "hook-secret"

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body []byte, signature, userAgent string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.Header.SetUserAgent(userAgent)
	if signature != "" {
		ctx.Request.Header.Set(todoist.SignatureHeader, signature)
	}
	ctx.Request.SetBody(body)
	return ctx
}

func newWebhookHandler() *WebhookHandler {
	uc := webhookUC.New(stubMappings{}, nil)
	return NewWebhookHandler(uc, webhookSecret, nil, nil)
}

func TestReceiveRejectsTamperedBody(t *testing.T) {
	h := newWebhookHandler()

	signed := []byte(`{"event_name":"item:deleted","event_data":{"id":"42"}}`)
	tampered := []byte(`{"event_name":"item:deleted","event_data":{"id":"43"}}`)

	ctx := webhookRequest(tampered, sign(signed), todoist.SenderUserAgent)
	h.Receive(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ctx.Response.StatusCode())
	}
}

func TestReceiveRejectsUnknownSender(t *testing.T) {
	h := newWebhookHandler()

	body := []byte(`{"event_name":"item:deleted","event_data":{"id":"42"}}`)
	ctx := webhookRequest(body, sign(body), "curl/8.0")
	h.Receive(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ctx.Response.StatusCode())
	}
}

func TestReceiveAcksValidSignature(t *testing.T) {
	h := newWebhookHandler()

	body := []byte(`{"event_name":"note:added","event_data":{"id":"42"}}`)
	ctx := webhookRequest(body, sign(body), todoist.SenderUserAgent)
	h.Receive(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d, want 200 for unrecognized but authentic events", ctx.Response.StatusCode())
	}
}

func TestReceiveAcksUnparseableAuthenticBody(t *testing.T) {
	h := newWebhookHandler()

	body := []byte(`not json at all`)
	ctx := webhookRequest(body, sign(body), todoist.SenderUserAgent)
	h.Receive(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d, want 200 once the signature checks out", ctx.Response.StatusCode())
	}
}
