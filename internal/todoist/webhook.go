package todoist

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// Webhook headers and the sender identity Todoist declares on every delivery.
const (
	SignatureHeader = "X-Todoist-Hmac-SHA256"
	SenderUserAgent = "Todoist-Webhooks"
)

// Webhook event names this service reacts to.
const (
	EventItemDeleted     = "item:deleted"
	EventItemCompleted   = "item:completed"
	EventItemUncompleted = "item:uncompleted"
)

// WebhookEvent is the tracker's webhook delivery payload.
type WebhookEvent struct {
	EventName   string       `json:"event_name"`
	UserID      json.Number  `json:"user_id"`
	EventData   WebhookItem  `json:"event_data"`
	Initiator   *WebhookUser `json:"initiator,omitempty"`
	TriggeredAt string       `json:"triggered_at"`
	Version     string       `json:"version"`
}

// WebhookItem carries the affected task's fields.
type WebhookItem struct {
	ID        string `json:"id"`
	Content   string `json:"content,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// WebhookUser identifies who triggered the event.
type WebhookUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// VerifySignature checks the HMAC-SHA-256 signature Todoist computes over the
// raw request body. The comparison runs over decoded signature bytes with
// hmac.Equal; a malformed header never matches.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	declared, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), declared)
}
