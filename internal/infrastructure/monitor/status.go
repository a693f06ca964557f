package monitor

import "time"

type Status struct {
	PostgreSQL     bool      `json:"postgresql"`
	Redis          bool      `json:"redis"`
	DispatchBuffer bool      `json:"dispatch_buffer"`
	PendingPrints  int       `json:"pending_prints"`
	LastCheck      time.Time `json:"last_check"`
}
