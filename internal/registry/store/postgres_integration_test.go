//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lifebridge/internal/registry/models"
	"lifebridge/pkg/testutil/containers"
)

type PostgresProfileStoreSuite struct {
	suite.Suite
	store *PostgresProfileStore
	pg    *containers.PostgresContainer
}

func TestPostgresProfileStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresProfileStoreSuite))
}

func (s *PostgresProfileStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.Pool)
}

func (s *PostgresProfileStoreSuite) SetupTest() {
	_, err := s.pg.Pool.Exec(context.Background(), "TRUNCATE profiles CASCADE")
	s.Require().NoError(err)
}

func (s *PostgresProfileStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Microsecond)

	donor := &models.Profile{
		ID:              "d-1",
		Role:            models.RoleDonor,
		BloodType:       models.BloodONeg,
		Age:             34,
		Location:        "Europe-UK",
		HLAMarkers:      "5/6 HLA match potential",
		OrgansAvailable: []string{"kidney", "liver"},
		CreatedAt:       created,
	}
	s.Require().NoError(s.store.Put(ctx, donor))

	got, err := s.store.Get(ctx, "d-1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(donor.BloodType, got.BloodType)
	s.Equal(donor.OrgansAvailable, got.OrgansAvailable)
	s.True(created.Equal(got.CreatedAt))
}

func (s *PostgresProfileStoreSuite) TestGetMissing() {
	got, err := s.store.Get(context.Background(), "ghost")
	s.Require().NoError(err)
	s.Nil(got)
}

// Create must not replace an existing row; the losing insert reports false
// and the stored profile is untouched.
func (s *PostgresProfileStoreSuite) TestCreateKeepsExistingProfile() {
	ctx := context.Background()
	p := &models.Profile{
		ID: "r-1", Role: models.RoleRecipient, BloodType: models.BloodABPos,
		Age: 41, Location: "Asia-India", UrgencyScore: 5, CreatedAt: time.Now().UTC(),
	}
	created, err := s.store.Create(ctx, p)
	s.Require().NoError(err)
	s.True(created)

	dup := *p
	dup.UrgencyScore = 9
	created, err = s.store.Create(ctx, &dup)
	s.Require().NoError(err)
	s.False(created)

	got, err := s.store.Get(ctx, "r-1")
	s.Require().NoError(err)
	s.Equal(5, got.UrgencyScore)
}

func (s *PostgresProfileStoreSuite) TestUpsertUpdatesMutableFields() {
	ctx := context.Background()
	p := &models.Profile{
		ID: "r-1", Role: models.RoleRecipient, BloodType: models.BloodABPos,
		Age: 41, Location: "Asia-India", UrgencyScore: 5, CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.Put(ctx, p))

	p.UrgencyScore = 9
	p.Location = "Europe-UK"
	s.Require().NoError(s.store.Put(ctx, p))

	got, err := s.store.Get(ctx, "r-1")
	s.Require().NoError(err)
	s.Equal(9, got.UrgencyScore)
	s.Equal("Europe-UK", got.Location)
}

func (s *PostgresProfileStoreSuite) TestListByRole() {
	ctx := context.Background()
	now := time.Now().UTC()
	for _, p := range []*models.Profile{
		{ID: "d-1", Role: models.RoleDonor, BloodType: models.BloodONeg, Age: 30, CreatedAt: now},
		{ID: "d-2", Role: models.RoleDonor, BloodType: models.BloodAPos, Age: 40, CreatedAt: now},
		{ID: "r-1", Role: models.RoleRecipient, BloodType: models.BloodABPos, Age: 50, UrgencyScore: 7, CreatedAt: now},
	} {
		s.Require().NoError(s.store.Put(ctx, p))
	}

	donors, err := s.store.List(ctx, models.RoleDonor)
	s.Require().NoError(err)
	s.Require().Len(donors, 2)
	s.Equal(models.ProfileID("d-1"), donors[0].ID)

	all, err := s.store.List(ctx, "")
	s.Require().NoError(err)
	s.Len(all, 3)
}
