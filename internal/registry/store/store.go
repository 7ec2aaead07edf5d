// Package store provides profile persistence. The matching core only reads
// profiles; writes happen through registry intake.
package store

import (
	"context"

	"lifebridge/internal/registry/models"
)

// ProfileStore is the persistence port for donor/recipient profiles.
//
// Get returns (nil, nil) for unknown ids; callers decide whether a missing
// profile is an error. Create reports false without writing when the id is
// already taken, so intake never overwrites an existing profile. Put
// replaces the mutable fields of a profile that is known to exist.
type ProfileStore interface {
	Get(ctx context.Context, id models.ProfileID) (*models.Profile, error)
	List(ctx context.Context, role models.Role) ([]*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) (bool, error)
	Put(ctx context.Context, profile *models.Profile) error
}
