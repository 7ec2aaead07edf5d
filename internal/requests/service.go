package requests

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lifebridge/internal/matching"
	"lifebridge/internal/registry/models"
	"lifebridge/internal/registry/store"
	dErrors "lifebridge/pkg/domain-errors"
)

// Service runs the match request workflow over the profile registry.
type Service struct {
	requests Store
	profiles store.ProfileStore
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs the match request service.
func NewService(requests Store, profiles store.ProfileStore, opts ...Option) (*Service, error) {
	if requests == nil {
		return nil, fmt.Errorf("request store is required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}

	svc := &Service{
		requests: requests,
		profiles: profiles,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Submit proposes a donor for a recipient. Both profiles must exist with
// the right roles and the pairing must pass the blood compatibility gate;
// a request for an incompatible pair is refused outright.
func (s *Service) Submit(ctx context.Context, recipientID, donorID models.ProfileID, requestedBy string) (*MatchRequest, error) {
	recipient, err := s.profiles.Get(ctx, recipientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load recipient")
	}
	if recipient == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "recipient "+string(recipientID)+" not found")
	}
	if !recipient.IsRecipient() {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "profile "+string(recipientID)+" is not a recipient")
	}

	donor, err := s.profiles.Get(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load donor")
	}
	if donor == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "donor "+string(donorID)+" not found")
	}
	if !donor.IsDonor() {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "profile "+string(donorID)+" is not a donor")
	}

	if !matching.BloodCompatible(donor.BloodType, recipient.BloodType) {
		return nil, dErrors.New(dErrors.CodeInvalidArgument,
			fmt.Sprintf("donor %s (%s) is blood-incompatible with recipient %s (%s)",
				donorID, donor.BloodType, recipientID, recipient.BloodType))
	}

	req := &MatchRequest{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		DonorID:     donorID,
		Status:      StatusPending,
		RequestedBy: requestedBy,
		CreatedAt:   s.now(),
	}
	if err := s.requests.Put(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist match request")
	}

	s.logger.InfoContext(ctx, "match request submitted",
		"request_id", req.ID,
		"recipient_id", recipientID,
		"donor_id", donorID,
	)
	return req, nil
}

// Accept moves a pending request to accepted. Accepting twice is a
// conflict so two coordinators cannot both claim the same pairing.
func (s *Service) Accept(ctx context.Context, requestID string) (*MatchRequest, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load match request")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "match request "+requestID+" not found")
	}

	acceptedAt := s.now()
	ok, err := s.requests.Accept(ctx, requestID, acceptedAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist match request")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeConflict, "match request "+requestID+" is already accepted")
	}
	req.Status = StatusAccepted
	req.AcceptedAt = &acceptedAt

	s.logger.InfoContext(ctx, "match request accepted",
		"request_id", req.ID,
		"recipient_id", req.RecipientID,
		"donor_id", req.DonorID,
	)
	return req, nil
}

// List returns requests for a recipient, or all requests when the id is
// empty.
func (s *Service) List(ctx context.Context, recipientID models.ProfileID) ([]*MatchRequest, error) {
	out, err := s.requests.List(ctx, recipientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list match requests")
	}
	return out, nil
}
