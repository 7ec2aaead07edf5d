// Package service implements profile intake and lookup for the registry.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lifebridge/internal/registry/models"
	"lifebridge/internal/registry/store"
	dErrors "lifebridge/pkg/domain-errors"
)

// Intake validation bounds. Living donors and listed recipients must be
// consenting adults; ages past the bound are treated as data entry errors.
const (
	minAge = 18
	maxAge = 100

	minUrgency = 1
	maxUrgency = 10
)

// RegisterInput is the intake payload for a new profile.
type RegisterInput struct {
	ID              string   `json:"id,omitempty"`
	Role            string   `json:"role"`
	BloodType       string   `json:"blood_type"`
	Age             int      `json:"age"`
	Location        string   `json:"location"`
	Comorbidities   string   `json:"comorbidities,omitempty"`
	HLAMarkers      string   `json:"hla_markers,omitempty"`
	UrgencyScore    int      `json:"urgency_score,omitempty"`
	OrgansAvailable []string `json:"organs_available,omitempty"`
	OrganRequired   string   `json:"organ_required,omitempty"`
}

// Service validates and persists profiles.
type Service struct {
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

// NewService constructs the registry service.
func NewService(profiles store.ProfileStore, opts ...Option) (*Service, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	svc := &Service{
		profiles: profiles,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register validates the intake payload and persists a new profile.
// Registering an id that already exists is a conflict; profiles are not
// silently replaced.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	profile, err := buildProfile(in)
	if err != nil {
		return nil, err
	}

	profile.CreatedAt = s.now()
	created, err := s.profiles.Create(ctx, profile)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist profile")
	}
	if !created {
		return nil, dErrors.New(dErrors.CodeConflict, "profile "+string(profile.ID)+" already exists")
	}

	s.logger.InfoContext(ctx, "profile registered",
		"profile_id", profile.ID,
		"role", profile.Role,
	)
	return profile, nil
}

// Get returns one profile by id.
func (s *Service) Get(ctx context.Context, id models.ProfileID) (*models.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load profile")
	}
	if p == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "profile "+string(id)+" not found")
	}
	return p, nil
}

// List returns profiles, optionally filtered to one role.
func (s *Service) List(ctx context.Context, role models.Role) ([]*models.Profile, error) {
	if role != "" && !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "unknown role "+string(role))
	}
	out, err := s.profiles.List(ctx, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list profiles")
	}
	return out, nil
}

// buildProfile normalizes and validates intake data into a profile.
func buildProfile(in RegisterInput) (*models.Profile, error) {
	role := models.Role(in.Role)
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidProfile, "role must be donor or recipient")
	}

	blood := models.NormalizeBloodType(in.BloodType)
	if !blood.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidProfile, "unknown blood type "+in.BloodType)
	}

	if in.Age < minAge || in.Age > maxAge {
		return nil, dErrors.New(dErrors.CodeInvalidProfile,
			fmt.Sprintf("age must be between %d and %d", minAge, maxAge))
	}

	switch role {
	case models.RoleRecipient:
		if in.UrgencyScore < minUrgency || in.UrgencyScore > maxUrgency {
			return nil, dErrors.New(dErrors.CodeInvalidProfile,
				fmt.Sprintf("urgency score must be between %d and %d", minUrgency, maxUrgency))
		}
	case models.RoleDonor:
		if in.UrgencyScore != 0 {
			return nil, dErrors.New(dErrors.CodeInvalidProfile, "urgency score applies only to recipients")
		}
		if in.OrganRequired != "" {
			return nil, dErrors.New(dErrors.CodeInvalidProfile, "organ_required applies only to recipients")
		}
	}

	id := models.ProfileID(in.ID)
	if id == "" {
		id = models.ProfileID(uuid.NewString())
	}

	return &models.Profile{
		ID:              id,
		Role:            role,
		BloodType:       blood,
		Age:             in.Age,
		Location:        in.Location,
		Comorbidities:   in.Comorbidities,
		HLAMarkers:      in.HLAMarkers,
		UrgencyScore:    in.UrgencyScore,
		OrgansAvailable: in.OrgansAvailable,
		OrganRequired:   in.OrganRequired,
	}, nil
}
