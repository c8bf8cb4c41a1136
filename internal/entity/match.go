package entity

import (
	"time"

	"github.com/google/uuid"
)

// Match links an applicant to a product they are eligible for.
type Match struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	ProductID   uuid.UUID  `json:"product_id"`
	MatchScore  float64    `json:"match_score"`
	MatchReason string     `json:"match_reason"`
	CreatedAt   time.Time  `json:"created_at"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
}

// MatchView is a match joined with its product, as listed for notification.
type MatchView struct {
	Match
	Product LoanProduct `json:"product"`
}
