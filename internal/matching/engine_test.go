package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"lifebridge/internal/registry/models"
	dErrors "lifebridge/pkg/domain-errors"
)

func TestBloodCompatible(t *testing.T) {
	// Full ABO/Rh donor -> recipient matrix.
	compatible := map[models.BloodType][]models.BloodType{
		models.BloodONeg:  {models.BloodONeg, models.BloodOPos, models.BloodANeg, models.BloodAPos, models.BloodBNeg, models.BloodBPos, models.BloodABNeg, models.BloodABPos},
		models.BloodOPos:  {models.BloodOPos, models.BloodAPos, models.BloodBPos, models.BloodABPos},
		models.BloodANeg:  {models.BloodANeg, models.BloodAPos, models.BloodABNeg, models.BloodABPos},
		models.BloodAPos:  {models.BloodAPos, models.BloodABPos},
		models.BloodBNeg:  {models.BloodBNeg, models.BloodBPos, models.BloodABNeg, models.BloodABPos},
		models.BloodBPos:  {models.BloodBPos, models.BloodABPos},
		models.BloodABNeg: {models.BloodABNeg, models.BloodABPos},
		models.BloodABPos: {models.BloodABPos},
	}

	for _, donor := range models.BloodTypes {
		allowed := make(map[models.BloodType]bool)
		for _, r := range compatible[donor] {
			allowed[r] = true
		}
		for _, recipient := range models.BloodTypes {
			got := BloodCompatible(donor, recipient)
			if got != allowed[recipient] {
				t.Errorf("BloodCompatible(%s, %s) = %v, want %v", donor, recipient, got, allowed[recipient])
			}
		}
	}

	t.Run("unknown types never compatible", func(t *testing.T) {
		assert.False(t, BloodCompatible("X+", models.BloodABPos))
		assert.False(t, BloodCompatible(models.BloodONeg, "??"))
	})
}

func TestParseHLA(t *testing.T) {
	cases := []struct {
		name    string
		markers string
		want    float64
	}{
		{"standard descriptor", "5/6 HLA match potential", 5.0 / 6.0},
		{"bare fraction", "3/6", 0.5},
		{"perfect match", "6/6 HLA match potential", 1.0},
		{"over-unity clamped", "5/4 HLA match potential", 1.0},
		{"zero matched", "0/6", 0.0},
		{"absent defaults to neutral", "", defaultHLA},
		{"garbage defaults to neutral", "pending lab work", defaultHLA},
		{"zero denominator defaults to neutral", "3/0", defaultHLA},
		{"negative matched clamps to zero", "-1/6", 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, parseHLA(tc.markers), 1e-9)
		})
	}
}

type EngineSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	var err error
	s.engine, err = NewEngine(DefaultEngineConfig())
	s.Require().NoError(err)
}

func donorProfile(id string, blood models.BloodType) *models.Profile {
	return &models.Profile{
		ID:        models.ProfileID(id),
		Role:      models.RoleDonor,
		BloodType: blood,
		Location:  "USA-New York",
	}
}

func recipientProfile(id string, blood models.BloodType, urgency int) *models.Profile {
	return &models.Profile{
		ID:           models.ProfileID(id),
		Role:         models.RoleRecipient,
		BloodType:    blood,
		Location:     "USA-New York",
		UrgencyScore: urgency,
	}
}

func (s *EngineSuite) TestNewEngine() {
	s.Run("weights must sum to one", func() {
		cfg := DefaultEngineConfig()
		cfg.Weights.Blood = 0.9
		_, err := NewEngine(cfg)
		s.Error(err)
	})

	s.Run("negative weight rejected", func() {
		cfg := DefaultEngineConfig()
		cfg.Weights.Blood = -0.1
		cfg.Weights.HLA = 0.75
		_, err := NewEngine(cfg)
		s.Error(err)
	})
}

func (s *EngineSuite) TestScore() {
	s.Run("compatible pair gets full blood sub-score", func() {
		b, err := s.engine.Score(donorProfile("d", models.BloodONeg), recipientProfile("r", models.BloodABPos, 7))
		s.Require().NoError(err)
		s.Equal(1.0, b.Blood)
	})

	s.Run("incompatible pair gets zero blood sub-score", func() {
		b, err := s.engine.Score(donorProfile("d", models.BloodAPos), recipientProfile("r", models.BloodBNeg, 7))
		s.Require().NoError(err)
		s.Equal(0.0, b.Blood)
	})

	s.Run("urgency scaled and clamped", func() {
		b, err := s.engine.Score(donorProfile("d", models.BloodONeg), recipientProfile("r", models.BloodABPos, 7))
		s.Require().NoError(err)
		s.InDelta(0.7, b.Urgency, 1e-9)

		b, err = s.engine.Score(donorProfile("d", models.BloodONeg), recipientProfile("r", models.BloodABPos, 0))
		s.Require().NoError(err)
		s.Equal(0.0, b.Urgency)
	})

	s.Run("co-located pair gets full proximity", func() {
		b, err := s.engine.Score(donorProfile("d", models.BloodONeg), recipientProfile("r", models.BloodABPos, 5))
		s.Require().NoError(err)
		s.InDelta(1.0, b.Proximity, 1e-9)
		s.InDelta(0.0, b.DistanceKM, 1e-6)
	})

	s.Run("distant pair gets reduced proximity", func() {
		donor := donorProfile("d", models.BloodONeg)
		donor.Location = "Asia-India"
		b, err := s.engine.Score(donor, recipientProfile("r", models.BloodABPos, 5))
		s.Require().NoError(err)
		s.Greater(b.DistanceKM, 10000.0)
		s.Less(b.Proximity, 0.5)
		s.GreaterOrEqual(b.Proximity, 0.0)
	})

	s.Run("unknown region maps to fixed low proximity", func() {
		donor := donorProfile("d", models.BloodONeg)
		donor.Location = "Atlantis"
		b, err := s.engine.Score(donor, recipientProfile("r", models.BloodABPos, 5))
		s.Require().NoError(err)
		s.InDelta(0.1, b.Proximity, 1e-9)
	})

	s.Run("exact score stays within unit interval", func() {
		for _, donorBlood := range models.BloodTypes {
			for _, recipientBlood := range models.BloodTypes {
				donor := donorProfile("d", donorBlood)
				donor.HLAMarkers = "6/6 HLA match potential"
				b, err := s.engine.Score(donor, recipientProfile("r", recipientBlood, 10))
				s.Require().NoError(err)
				s.GreaterOrEqual(b.ExactScore, 0.0)
				s.LessOrEqual(b.ExactScore, 1.0)
			}
		}
	})

	s.Run("deterministic across calls", func() {
		donor := donorProfile("d", models.BloodONeg)
		donor.HLAMarkers = "4/6 HLA match potential"
		recipient := recipientProfile("r", models.BloodABPos, 7)

		a, err := s.engine.Score(donor, recipient)
		s.Require().NoError(err)
		b, err := s.engine.Score(donor, recipient)
		s.Require().NoError(err)
		s.Equal(a, b)
	})

	s.Run("missing blood type rejected", func() {
		donor := &models.Profile{ID: "d", Role: models.RoleDonor}
		_, err := s.engine.Score(donor, recipientProfile("r", models.BloodABPos, 5))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvalidProfile))
	})

	s.Run("missing role rejected", func() {
		donor := &models.Profile{ID: "d", BloodType: models.BloodONeg}
		_, err := s.engine.Score(donor, recipientProfile("r", models.BloodABPos, 5))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvalidProfile))
	})

	s.Run("inputs are not mutated", func() {
		donor := donorProfile("d", models.BloodONeg)
		recipient := recipientProfile("r", models.BloodABPos, 7)
		donorCopy := *donor
		recipientCopy := *recipient

		_, err := s.engine.Score(donor, recipient)
		require.NoError(s.T(), err)
		s.Equal(donorCopy, *donor)
		s.Equal(recipientCopy, *recipient)
	})
}
