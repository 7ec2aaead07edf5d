package budget

import (
	"context"
	"sync"
	"time"

	dErrors "lifebridge/pkg/domain-errors"
)

// InMemoryLedger implements Ledger with a mutex-guarded map. Single-node
// only; distributed deployments use RedisLedger.
type InMemoryLedger struct {
	mu      sync.Mutex
	cfg     Config
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	start time.Time
	spent float64
}

// NewInMemory creates an in-memory budget ledger.
func NewInMemory(cfg Config) *InMemoryLedger {
	return &InMemoryLedger{
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *InMemoryLedger) Spend(_ context.Context, profileID string, epsilon float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[profileID]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		w = &window{start: now}
		l.windows[profileID] = w
	}

	if w.spent+epsilon > l.cfg.Limit {
		return l.cfg.Limit - w.spent, dErrors.New(dErrors.CodeBudgetExhausted,
			"privacy budget exhausted for profile "+profileID)
	}
	w.spent += epsilon
	return l.cfg.Limit - w.spent, nil
}
