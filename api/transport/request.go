package transport

import "github.com/faxmemaybe/backend/domain"

// TodoSubmissionRequest is the public submission payload. Importance is
// decoded as a float so the validator can reject fractional values rather
// than silently truncating them.
type TodoSubmissionRequest struct {
	Todo        string   `json:"todo"`
	Description string   `json:"description"`
	Importance  float64  `json:"importance"`
	DueDate     string   `json:"dueDate"`
	From        string   `json:"from"`
	Labels      []string `json:"labels"`
	Source      string   `json:"source"`
}

// Submission converts the wire payload into the domain submission type.
func (r TodoSubmissionRequest) Submission() domain.Submission {
	return domain.Submission{
		Todo:        r.Todo,
		Description: r.Description,
		Importance:  r.Importance,
		DueDate:     r.DueDate,
		From:        r.From,
		Labels:      r.Labels,
		Source:      r.Source,
	}
}
