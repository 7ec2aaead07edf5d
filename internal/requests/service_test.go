package requests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lifebridge/internal/registry/models"
	"lifebridge/internal/registry/store"
	dErrors "lifebridge/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	profiles *store.InMemoryProfileStore
	service  *Service
	clock    time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.profiles = store.NewInMemory()
	s.clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	svc, err := NewService(NewInMemoryStore(), s.profiles, WithClock(func() time.Time { return s.clock }))
	s.Require().NoError(err)
	s.service = svc

	ctx := context.Background()
	for _, p := range []*models.Profile{
		{ID: "r-1", Role: models.RoleRecipient, BloodType: models.BloodABPos, Location: "Europe-UK", UrgencyScore: 6},
		{ID: "r-o", Role: models.RoleRecipient, BloodType: models.BloodONeg, Location: "Europe-UK", UrgencyScore: 4},
		{ID: "d-1", Role: models.RoleDonor, BloodType: models.BloodONeg, Location: "Europe-UK"},
		{ID: "d-ab", Role: models.RoleDonor, BloodType: models.BloodABPos, Location: "Europe-UK"},
	} {
		s.Require().NoError(s.profiles.Put(ctx, p))
	}
}

func (s *ServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *ServiceSuite) TestSubmit() {
	ctx := context.Background()

	s.Run("compatible pairing creates a pending request", func() {
		req, err := s.service.Submit(ctx, "r-1", "d-1", "dr-jones")
		s.Require().NoError(err)
		s.NotEmpty(req.ID)
		s.Equal(StatusPending, req.Status)
		s.Equal("dr-jones", req.RequestedBy)
		s.Equal(s.clock, req.CreatedAt)
		s.Nil(req.AcceptedAt)
	})

	s.Run("incompatible pairing is refused", func() {
		_, err := s.service.Submit(ctx, "r-o", "d-ab", "dr-jones")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvalidArgument))
	})

	s.Run("unknown recipient", func() {
		_, err := s.service.Submit(ctx, "ghost", "d-1", "")
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("unknown donor", func() {
		_, err := s.service.Submit(ctx, "r-1", "ghost", "")
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("role mismatch rejected both ways", func() {
		_, err := s.service.Submit(ctx, "d-1", "d-ab", "")
		s.True(dErrors.Is(err, dErrors.CodeInvalidArgument))

		_, err = s.service.Submit(ctx, "r-1", "r-o", "")
		s.True(dErrors.Is(err, dErrors.CodeInvalidArgument))
	})
}

func (s *ServiceSuite) TestAccept() {
	ctx := context.Background()

	s.Run("pending request is accepted once", func() {
		req, err := s.service.Submit(ctx, "r-1", "d-1", "dr-jones")
		s.Require().NoError(err)

		s.clock = s.clock.Add(time.Hour)
		accepted, err := s.service.Accept(ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(StatusAccepted, accepted.Status)
		s.Require().NotNil(accepted.AcceptedAt)
		s.Equal(s.clock, *accepted.AcceptedAt)

		_, err = s.service.Accept(ctx, req.ID)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
	})

	s.Run("unknown request", func() {
		_, err := s.service.Accept(ctx, "ghost")
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

// Racing coordinators must not both claim the same pairing: exactly one
// accept wins, the rest see a conflict.
func (s *ServiceSuite) TestAcceptConcurrent() {
	ctx := context.Background()

	req, err := s.service.Submit(ctx, "r-1", "d-1", "dr-jones")
	s.Require().NoError(err)

	const coordinators = 16
	errs := make(chan error, coordinators)
	var wg sync.WaitGroup
	for i := 0; i < coordinators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Accept(ctx, req.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case dErrors.Is(err, dErrors.CodeConflict):
			conflicts++
		default:
			s.Require().NoError(err)
		}
	}
	s.Equal(1, wins)
	s.Equal(coordinators-1, conflicts)

	got, err := s.service.Accept(ctx, req.ID)
	s.Nil(got)
	s.True(dErrors.Is(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestList() {
	ctx := context.Background()

	first, err := s.service.Submit(ctx, "r-1", "d-1", "")
	s.Require().NoError(err)
	s.clock = s.clock.Add(time.Minute)
	second, err := s.service.Submit(ctx, "r-1", "d-ab", "")
	s.Require().NoError(err)
	s.clock = s.clock.Add(time.Minute)
	other, err := s.service.Submit(ctx, "r-o", "d-1", "")
	s.Require().NoError(err)

	// Filtered by recipient, newest first.
	out, err := s.service.List(ctx, "r-1")
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal(second.ID, out[0].ID)
	s.Equal(first.ID, out[1].ID)

	// Empty recipient returns everything.
	out, err = s.service.List(ctx, "")
	s.Require().NoError(err)
	s.Require().Len(out, 3)
	ids := []string{out[0].ID, out[1].ID, out[2].ID}
	s.Contains(ids, other.ID)
}
