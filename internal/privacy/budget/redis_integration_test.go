//go:build integration

package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "lifebridge/pkg/domain-errors"
	"lifebridge/pkg/testutil/containers"
)

type RedisLedgerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	ledger *RedisLedger
}

func TestRedisLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLedgerSuite))
}

func (s *RedisLedgerSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisLedgerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.ledger = NewRedis(s.redis.Client, Config{Enabled: true, Limit: 1.0, Window: time.Hour})
}

func (s *RedisLedgerSuite) TestSpendToLimit() {
	ctx := context.Background()

	remaining, err := s.ledger.Spend(ctx, "r-1", 0.5)
	s.Require().NoError(err)
	s.InDelta(0.5, remaining, 1e-9)

	remaining, err = s.ledger.Spend(ctx, "r-1", 0.5)
	s.Require().NoError(err)
	s.InDelta(0.0, remaining, 1e-9)

	_, err = s.ledger.Spend(ctx, "r-1", 0.5)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeBudgetExhausted))
}

func (s *RedisLedgerSuite) TestRefusalDoesNotDebit() {
	ctx := context.Background()

	_, err := s.ledger.Spend(ctx, "r-1", 0.8)
	s.Require().NoError(err)

	// 0.8 + 0.8 exceeds the limit; the refused debit must not be applied.
	_, err = s.ledger.Spend(ctx, "r-1", 0.8)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeBudgetExhausted))

	remaining, err := s.ledger.Spend(ctx, "r-1", 0.2)
	s.Require().NoError(err)
	s.InDelta(0.0, remaining, 1e-9)
}

func (s *RedisLedgerSuite) TestProfilesAreIsolated() {
	ctx := context.Background()

	_, err := s.ledger.Spend(ctx, "r-1", 1.0)
	s.Require().NoError(err)
	_, err = s.ledger.Spend(ctx, "r-1", 0.1)
	s.Require().Error(err)

	remaining, err := s.ledger.Spend(ctx, "r-2", 0.5)
	s.Require().NoError(err)
	s.InDelta(0.5, remaining, 1e-9)
}
