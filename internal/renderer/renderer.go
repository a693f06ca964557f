// Package renderer produces the printable ticket image for a submission by
// driving a headless browser to the ticket display page and capturing the
// ticket element.
package renderer

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/domain"
)

// Config controls how tickets are captured.
type Config struct {
	// TicketBaseURL is the display page; submission fields are appended as
	// query parameters.
	TicketBaseURL string
	// ChromeWSURL points at a remote DevTools websocket. Empty launches a
	// local headless browser instead.
	ChromeWSURL string
	// Selector identifies the ticket root element. The screenshot is scoped
	// to this element so image dimensions are content-determined.
	Selector string
	Timeout  time.Duration
}

// Renderer drives the headless browser.
type Renderer struct {
	cfg    Config
	logger *zap.Logger
}

// New builds a Renderer.
func New(cfg Config, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Selector == "" {
		cfg.Selector = "#ticket"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Renderer{cfg: cfg, logger: logger}
}

// Render navigates to the ticket page for the submission, waits for the
// ticket element to become visible (a readiness signal, not a fixed sleep)
// and captures a screenshot scoped to that element. A ticket that never
// appears within the configured timeout is a fatal render failure for this
// submission; upstream effects are left in place.
func (r *Renderer) Render(ctx context.Context, draft *domain.NewTodo, localID string) ([]byte, error) {
	pageURL, err := TicketURL(r.cfg.TicketBaseURL, draft, localID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeRender, "failed to build ticket URL", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	allocCtx, cancelAlloc := r.allocator(ctx)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var image []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(r.cfg.Selector, chromedp.ByQuery),
		chromedp.Screenshot(r.cfg.Selector, &image, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeRender, "ticket capture failed", err)
	}

	r.logger.Debug("ticket rendered",
		zap.String("todo_id", localID),
		zap.Int("bytes", len(image)))
	return image, nil
}

func (r *Renderer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.ChromeWSURL != "" {
		return chromedp.NewRemoteAllocator(ctx, r.cfg.ChromeWSURL)
	}
	return chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
}

// TicketURL builds the display-page URL carrying the submission fields and
// the local identifier as percent-encoded query parameters.
func TicketURL(base string, draft *domain.NewTodo, localID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("id", localID)
	q.Set("todo", draft.Todo)
	q.Set("importance", strconv.Itoa(draft.Importance))
	if draft.Description != "" {
		q.Set("description", draft.Description)
	}
	if draft.From != "" {
		q.Set("from", draft.From)
	}
	if draft.DueDate != "" {
		q.Set("dueDate", draft.DueDate)
	}
	if len(draft.Labels) > 0 {
		q.Set("labels", strings.Join(draft.Labels, ","))
	}
	if draft.Source != "" {
		q.Set("source", draft.Source)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
