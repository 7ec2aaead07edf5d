// Package matching computes donor/recipient compatibility and ranks
// candidate donors for a recipient.
//
// The engine is a pure function over two profiles: it never mutates its
// inputs, performs no I/O, and is safe to call concurrently.
package matching

import (
	"math"
	"strconv"
	"strings"

	"lifebridge/internal/registry/models"
	dErrors "lifebridge/pkg/domain-errors"
)

// Weights control how the four sub-scores combine into the exact score.
// They are deployment policy, not part of the scoring contract.
type Weights struct {
	Blood     float64 `mapstructure:"blood"`
	HLA       float64 `mapstructure:"hla"`
	Proximity float64 `mapstructure:"proximity"`
	Urgency   float64 `mapstructure:"urgency"`
}

// EngineConfig carries the scoring policy for a deployment.
type EngineConfig struct {
	Weights Weights `mapstructure:"weights"`

	// MaxDistanceKM is where proximity reaches zero. Defaults to half
	// the Earth's circumference.
	MaxDistanceKM float64 `mapstructure:"max_distance_km"`

	// UnknownRegionProximity is the fixed proximity assigned when either
	// location is missing from the region table. A low value rather than
	// an error: matching must stay available under partial data.
	UnknownRegionProximity float64 `mapstructure:"unknown_region_proximity"`

	// Regions maps categorical region labels to centroids.
	Regions map[string]Coordinates `mapstructure:"regions"`
}

// DefaultEngineConfig returns the documented default scoring policy:
// blood compatibility dominates, then HLA, urgency, proximity.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights: Weights{
			Blood:     0.40,
			HLA:       0.25,
			Proximity: 0.15,
			Urgency:   0.20,
		},
		MaxDistanceKM:          20000,
		UnknownRegionProximity: 0.1,
		Regions: map[string]Coordinates{
			"USA-California":      {Lat: 37.8, Lon: -122.4},
			"USA-New York":        {Lat: 40.7, Lon: -74.0},
			"Europe-UK":           {Lat: 51.5, Lon: -0.1},
			"Asia-India":          {Lat: 28.6, Lon: 77.2},
			"Africa-South Africa": {Lat: -33.9, Lon: 18.4},
		},
	}
}

// Validate rejects configurations that would produce meaningless scores.
func (c EngineConfig) Validate() error {
	sum := c.Weights.Blood + c.Weights.HLA + c.Weights.Proximity + c.Weights.Urgency
	if c.Weights.Blood < 0 || c.Weights.HLA < 0 || c.Weights.Proximity < 0 || c.Weights.Urgency < 0 {
		return dErrors.New(dErrors.CodeInvalidArgument, "scoring weights must be non-negative")
	}
	if math.Abs(sum-1.0) > 0.001 {
		return dErrors.New(dErrors.CodeInvalidArgument, "scoring weights must sum to 1.0")
	}
	if c.MaxDistanceKM <= 0 {
		return dErrors.New(dErrors.CodeInvalidArgument, "max_distance_km must be positive")
	}
	if c.UnknownRegionProximity < 0 || c.UnknownRegionProximity > 1 {
		return dErrors.New(dErrors.CodeInvalidArgument, "unknown_region_proximity must be within [0,1]")
	}
	return nil
}

// Breakdown is the ephemeral result of scoring one (donor, recipient)
// pair. It is computed on demand and never persisted.
type Breakdown struct {
	Blood     float64 `json:"blood"`
	HLA       float64 `json:"hla"`
	Proximity float64 `json:"proximity"`
	Urgency   float64 `json:"urgency"`

	// ExactScore is the deterministic weighted combination of the four
	// sub-scores. It must never be serialized to a viewer lacking the
	// exact-score capability; the privacy filter enforces that.
	ExactScore float64 `json:"-"`

	// DistanceKM is informational, for explanation text.
	DistanceKM float64 `json:"-"`
}

// Engine scores (donor, recipient) pairs deterministically.
type Engine struct {
	cfg EngineConfig
}

// NewEngine constructs a scoring engine, validating the policy first.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Score computes the compatibility breakdown for a donor/recipient pair.
//
// Missing optional fields degrade to defaults; only a missing blood type
// or role rejects the pair, because nothing meaningful can be computed
// without them.
func (e *Engine) Score(donor, recipient *models.Profile) (Breakdown, error) {
	if err := validateProfile(donor); err != nil {
		return Breakdown{}, err
	}
	if err := validateProfile(recipient); err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	if BloodCompatible(donor.BloodType, recipient.BloodType) {
		b.Blood = 1.0
	}
	b.HLA = parseHLA(donor.HLAMarkers)
	b.Proximity, b.DistanceKM = e.proximity(donor.Location, recipient.Location)
	b.Urgency = clamp01(float64(recipient.UrgencyScore) / 10.0)

	w := e.cfg.Weights
	b.ExactScore = clamp01(w.Blood*b.Blood + w.HLA*b.HLA + w.Proximity*b.Proximity + w.Urgency*b.Urgency)
	return b, nil
}

func validateProfile(p *models.Profile) error {
	if p == nil {
		return dErrors.New(dErrors.CodeInvalidProfile, "profile is required")
	}
	if !p.Role.Valid() {
		return dErrors.New(dErrors.CodeInvalidProfile, "profile "+string(p.ID)+" has no role")
	}
	if !p.BloodType.Valid() {
		return dErrors.New(dErrors.CodeInvalidProfile, "profile "+string(p.ID)+" has no blood type")
	}
	return nil
}

// defaultHLA is the neutral similarity used when markers are absent or
// unparseable.
const defaultHLA = 0.5

// parseHLA extracts a matched/total fraction from descriptors like
// "5/6 HLA match potential", clamped to [0,1].
func parseHLA(markers string) float64 {
	fields := strings.Fields(markers)
	if len(fields) == 0 {
		return defaultHLA
	}
	parts := strings.SplitN(fields[0], "/", 2)
	if len(parts) != 2 {
		return defaultHLA
	}
	matched, err := strconv.Atoi(parts[0])
	if err != nil {
		return defaultHLA
	}
	total, err := strconv.Atoi(parts[1])
	if err != nil || total <= 0 {
		return defaultHLA
	}
	return clamp01(float64(matched) / float64(total))
}

// proximity maps the great-circle distance between two region centroids
// to [0,1]: 1 when co-located, approaching 0 at MaxDistanceKM.
func (e *Engine) proximity(donorLoc, recipientLoc string) (score, distKM float64) {
	d, okD := e.cfg.Regions[donorLoc]
	r, okR := e.cfg.Regions[recipientLoc]
	if !okD || !okR {
		return e.cfg.UnknownRegionProximity, 0
	}
	dist := haversineKM(d, r)
	return clamp01(1.0 - dist/e.cfg.MaxDistanceKM), dist
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
