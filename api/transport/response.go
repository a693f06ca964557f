package transport

import (
	"errors"

	"github.com/faxmemaybe/backend/domain"
)

// ErrorResponse is the error body shape shared by every endpoint. Error
// carries the primary human-readable message; Message carries underlying
// detail when one exists (upstream responses, wrapped causes).
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewErrorResponse flattens an error into the wire shape. Domain errors
// contribute their message and, separately, their wrapped cause.
func NewErrorResponse(err error) ErrorResponse {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		resp := ErrorResponse{Error: dErr.Message}
		if dErr.Err != nil {
			resp.Message = dErr.Err.Error()
		}
		return resp
	}
	return ErrorResponse{Error: err.Error()}
}

// SubmitResponse acknowledges a fully completed submission pipeline.
type SubmitResponse struct {
	Success   bool   `json:"success"`
	ID        string `json:"id,omitempty"`
	TodoistID string `json:"todoistId,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ActionResponse reports a state-change request. Success is false when the
// tracker no longer knows the task, which the caller treats as "already done".
type ActionResponse struct {
	Success bool `json:"success"`
}

// CountResponse carries the pending task count.
type CountResponse struct {
	Count int `json:"count"`
}

// Ack is the webhook acknowledgement body.
type Ack struct {
	OK bool `json:"ok"`
}
