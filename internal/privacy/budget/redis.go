package budget

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "lifebridge/pkg/domain-errors"
)

// RedisLedger implements Ledger on Redis so budget accounting survives
// restarts and is shared across service instances.
type RedisLedger struct {
	client *redis.Client
	cfg    Config
	now    func() time.Time
}

// NewRedis creates a Redis-backed budget ledger.
func NewRedis(client *redis.Client, cfg Config) *RedisLedger {
	return &RedisLedger{client: client, cfg: cfg, now: time.Now}
}

// spendScript atomically debits the budget only when it fits the limit.
// Returning the debit decision from the script avoids a race between two
// concurrent queries both observing headroom.
var spendScript = redis.NewScript(`
local spent = tonumber(redis.call('GET', KEYS[1]) or '0')
local eps = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
if spent + eps > limit then
	return {0, tostring(limit - spent)}
end
spent = spent + eps
redis.call('SET', KEYS[1], tostring(spent), 'PX', ARGV[3])
return {1, tostring(limit - spent)}
`)

func (l *RedisLedger) Spend(ctx context.Context, profileID string, epsilon float64) (float64, error) {
	key := l.windowKey(profileID)
	ttl := strconv.FormatInt(l.cfg.Window.Milliseconds(), 10)

	res, err := spendScript.Run(ctx, l.client, []string{key},
		formatFloat(epsilon), formatFloat(l.cfg.Limit), ttl).Slice()
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "budget ledger unavailable")
	}
	if len(res) != 2 {
		return 0, dErrors.New(dErrors.CodeInternal, "budget ledger returned malformed reply")
	}

	allowed, _ := res[0].(int64)
	remaining, err := strconv.ParseFloat(fmt.Sprint(res[1]), 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "budget ledger returned malformed remainder")
	}

	if allowed != 1 {
		return remaining, dErrors.New(dErrors.CodeBudgetExhausted,
			"privacy budget exhausted for profile "+profileID)
	}
	return remaining, nil
}

// windowKey buckets spend by window start so budgets reset on a fixed
// schedule rather than sliding.
func (l *RedisLedger) windowKey(profileID string) string {
	bucket := l.now().UnixMilli() / l.cfg.Window.Milliseconds()
	return fmt.Sprintf("privacy:budget:%s:%d", profileID, bucket)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
