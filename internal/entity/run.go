package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run is one extraction pass over a page.
type Run struct {
	ID           uuid.UUID  `json:"id"`
	SourceURL    string     `json:"source_url"`
	Status       string     `json:"status"`
	RecordCount  int        `json:"record_count"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
