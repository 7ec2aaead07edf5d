package privacy

import (
	crand "crypto/rand"
	"math/rand/v2"

	dErrors "lifebridge/pkg/domain-errors"
)

// NewNoiseSource returns a ChaCha8 generator seeded from crypto/rand.
//
// Each ranking request gets its own source, so concurrent requests never
// observe correlated noise sequences and there is no contended global RNG.
func NewNoiseSource() (*rand.Rand, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePrivacyConfig, "seeding noise source failed")
	}
	return rand.New(rand.NewChaCha8(seed)), nil
}
