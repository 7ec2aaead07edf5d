// Package budget tracks per-recipient privacy budget so repeated ranking
// queries cannot be averaged to recover exact scores.
//
// Each ranking query spends the deployment epsilon against the recipient's
// windowed budget; once the window's budget is exhausted further queries
// are refused until the window rolls over.
package budget

import (
	"context"
	"time"
)

// Config is the ledger policy for a deployment.
type Config struct {
	// Enabled turns budget enforcement on. Off by default so small
	// deployments keep the original per-query noise behavior.
	Enabled bool `mapstructure:"enabled"`

	// Limit is the total epsilon spendable per recipient per window.
	Limit float64 `mapstructure:"limit"`

	// Window is the accounting period after which spend resets.
	Window time.Duration `mapstructure:"window"`
}

// DefaultConfig allows 20 default-epsilon queries per recipient per day.
func DefaultConfig() Config {
	return Config{Enabled: false, Limit: 10.0, Window: 24 * time.Hour}
}

// Ledger is the persistence port for budget accounting.
//
// Spend debits epsilon from the profile's current window and returns the
// remaining budget. It returns a budget_exhausted domain error when the
// debit would exceed the window limit; the debit is not applied in that
// case.
type Ledger interface {
	Spend(ctx context.Context, profileID string, epsilon float64) (remaining float64, err error)
}
