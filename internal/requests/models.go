// Package requests implements the match request workflow: a clinician
// proposes a donor for a recipient, and the proposal is later accepted to
// move the pair into transplant coordination.
package requests

import (
	"context"
	"time"

	"lifebridge/internal/registry/models"
)

// Status is the lifecycle state of a match request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// MatchRequest is one proposed donor-recipient pairing. It carries no
// compatibility scores; the ranking endpoints are the only score surface.
type MatchRequest struct {
	ID          string           `json:"id"`
	RecipientID models.ProfileID `json:"recipient_id"`
	DonorID     models.ProfileID `json:"donor_id"`
	Status      Status           `json:"status"`
	RequestedBy string           `json:"requested_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
}

// Store is the persistence port for match requests.
type Store interface {
	// Get returns the request or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*MatchRequest, error)

	// List returns requests for a recipient, newest first. An empty
	// recipient id returns all requests.
	List(ctx context.Context, recipientID models.ProfileID) ([]*MatchRequest, error)

	// Put inserts a new request.
	Put(ctx context.Context, req *MatchRequest) error

	// Accept atomically transitions a pending request to accepted. It
	// reports false without writing when the request is absent or not
	// pending, so two concurrent accepts cannot both succeed.
	Accept(ctx context.Context, id string, at time.Time) (bool, error)
}
