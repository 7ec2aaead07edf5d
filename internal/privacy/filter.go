// Package privacy produces display-safe scores from exact compatibility
// scores and owns the decision of who may see exact values.
//
// The capability check lives here, not in the rendering layer: a handler
// that never receives an exact value cannot leak it.
package privacy

import (
	"math"
	"math/rand/v2"

	"lifebridge/pkg/domain"
	dErrors "lifebridge/pkg/domain-errors"
)

// Config is the deployment noise policy. Epsilon is fixed per deployment,
// never per request, so callers cannot tune it down to minimize noise.
type Config struct {
	// Epsilon is the differential privacy budget parameter. Smaller
	// means more noise and stronger privacy. Default 0.5.
	Epsilon float64 `mapstructure:"epsilon"`

	// Sensitivity is the maximum change one individual's data can cause
	// in the released score. Scores are bounded to [0,1], so 1.0.
	Sensitivity float64 `mapstructure:"sensitivity"`

	// Clamp keeps noisy scores inside [0,1] so displayed values stay
	// meaningful. Clamping biases results near the boundaries: a true
	// score of 0.98 will average slightly below 0.98 over many draws.
	// We accept that tradeoff for display purposes.
	Clamp bool `mapstructure:"clamp"`
}

// DefaultConfig returns the documented default noise policy.
func DefaultConfig() Config {
	return Config{Epsilon: 0.5, Sensitivity: 1.0, Clamp: true}
}

// Validate rejects configurations that cannot calibrate noise. A filter
// with an invalid config must never be used; there is no unnoised fallback.
func (c Config) Validate() error {
	if c.Epsilon <= 0 {
		return dErrors.New(dErrors.CodePrivacyConfig, "epsilon must be positive")
	}
	if c.Sensitivity <= 0 {
		return dErrors.New(dErrors.CodePrivacyConfig, "sensitivity must be positive")
	}
	return nil
}

// Filter applies calibrated Gaussian noise to exact scores.
type Filter struct {
	cfg Config
}

// NewFilter constructs a filter, failing closed on a bad noise policy.
func NewFilter(cfg Config) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Filter{cfg: cfg}, nil
}

// Epsilon exposes the configured privacy budget parameter, which the
// budget ledger debits per query.
func (f *Filter) Epsilon() float64 {
	return f.cfg.Epsilon
}

// ApplyNoise returns exactScore plus one zero-mean Gaussian draw with
// sigma = sensitivity / epsilon, clamped to [0,1] when configured.
//
// The noisy value is re-derived on every request and never cached or
// persisted: a cached value would let an adversary average repeated
// queries to recover the exact score.
func (f *Filter) ApplyNoise(exactScore float64, rng *rand.Rand) (float64, error) {
	// Re-validated at draw time so a zero-valued config wired past the
	// constructor still fails closed instead of releasing the exact score.
	if err := f.cfg.Validate(); err != nil {
		return 0, err
	}
	if rng == nil {
		return 0, dErrors.New(dErrors.CodePrivacyConfig, "noise source is required")
	}

	sigma := f.cfg.Sensitivity / f.cfg.Epsilon
	noisy := exactScore + rng.NormFloat64()*sigma
	if f.cfg.Clamp {
		noisy = math.Max(0, math.Min(1, noisy))
	}
	return noisy, nil
}

// AllowExact reports whether the caller holds the exact-score capability.
// Auditors and admins have it by role; anyone else needs the explicit
// scope. Every positive answer must be followed by an audited disclosure.
func (f *Filter) AllowExact(caller domain.Caller) bool {
	if caller.Role == domain.RoleAuditor || caller.Role == domain.RoleAdmin {
		return true
	}
	return caller.HasScope(domain.ScopeExactScores)
}
