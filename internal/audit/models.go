// Package audit records exact-score disclosures with fail-closed
// semantics: if the disclosure cannot be recorded, the exact score must
// not be revealed.
package audit

import (
	"context"
	"time"
)

// DisclosureEvent is one exact-score reveal. It references profiles and
// counts only; scores themselves are never written to the audit trail, so
// the trail cannot be joined against responses to recover values.
type DisclosureEvent struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	Subject     string    `json:"subject"`
	Role        string    `json:"role"`
	RecipientID string    `json:"recipient_id"`
	DonorCount  int       `json:"donor_count"`
	ClientIP    string    `json:"client_ip,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Store is the persistence port for the disclosure trail.
type Store interface {
	Append(ctx context.Context, event DisclosureEvent) error
}
