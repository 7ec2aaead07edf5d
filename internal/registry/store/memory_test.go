package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"lifebridge/internal/registry/models"
)

type InMemoryProfileStoreSuite struct {
	suite.Suite
	store *InMemoryProfileStore
}

func TestInMemoryProfileStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryProfileStoreSuite))
}

func (s *InMemoryProfileStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryProfileStoreSuite) TestGet() {
	ctx := context.Background()

	s.Run("unknown id returns nil without error", func() {
		p, err := s.store.Get(ctx, "missing")
		s.NoError(err)
		s.Nil(p)
	})

	s.Run("returns a copy of the stored profile", func() {
		orig := &models.Profile{ID: "d-1", Role: models.RoleDonor, BloodType: models.BloodOPos}
		s.Require().NoError(s.store.Put(ctx, orig))

		got, err := s.store.Get(ctx, "d-1")
		s.Require().NoError(err)
		s.Require().NotNil(got)
		s.Equal(models.BloodOPos, got.BloodType)

		// Mutating the returned profile must not affect the store.
		got.BloodType = models.BloodABNeg
		again, err := s.store.Get(ctx, "d-1")
		s.Require().NoError(err)
		s.Equal(models.BloodOPos, again.BloodType)
	})
}

func (s *InMemoryProfileStoreSuite) TestList() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, &models.Profile{ID: "d-2", Role: models.RoleDonor, BloodType: models.BloodAPos}))
	s.Require().NoError(s.store.Put(ctx, &models.Profile{ID: "d-1", Role: models.RoleDonor, BloodType: models.BloodONeg}))
	s.Require().NoError(s.store.Put(ctx, &models.Profile{ID: "r-1", Role: models.RoleRecipient, BloodType: models.BloodABPos}))

	s.Run("filters by role and sorts by id", func() {
		donors, err := s.store.List(ctx, models.RoleDonor)
		s.Require().NoError(err)
		s.Require().Len(donors, 2)
		s.Equal(models.ProfileID("d-1"), donors[0].ID)
		s.Equal(models.ProfileID("d-2"), donors[1].ID)
	})

	s.Run("empty role lists everything", func() {
		all, err := s.store.List(ctx, "")
		s.Require().NoError(err)
		s.Len(all, 3)
	})
}
