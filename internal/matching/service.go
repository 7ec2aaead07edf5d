package matching

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"lifebridge/internal/matching/metrics"
	"lifebridge/internal/privacy"
	"lifebridge/internal/privacy/budget"
	"lifebridge/internal/registry/models"
	"lifebridge/internal/registry/store"
	dErrors "lifebridge/pkg/domain-errors"
)

// ServiceConfig bounds ranking requests.
type ServiceConfig struct {
	// DefaultTopN is used when the caller does not ask for a count.
	DefaultTopN int `mapstructure:"default_top_n"`

	// MaxConcurrency caps parallel candidate scoring per request.
	MaxConcurrency int `mapstructure:"max_concurrency"`

	// Deadline bounds one ranking request. On expiry the request
	// returns whatever candidates were already scored, flagged partial.
	Deadline time.Duration `mapstructure:"deadline"`
}

// DefaultServiceConfig returns the documented ranking defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultTopN:    10,
		MaxConcurrency: 8,
		Deadline:       2 * time.Second,
	}
}

// Match pairs a donor with its breakdown and the per-request noisy score.
type Match struct {
	Donor      *models.Profile
	Breakdown  Breakdown
	NoisyScore float64
}

// RankResult is one ranking response before presentation.
type RankResult struct {
	Recipient *models.Profile
	Matches   []Match

	// Partial marks results truncated by the ranking deadline.
	Partial bool

	// BudgetRemaining is the recipient's remaining privacy budget, or
	// negative when budget accounting is disabled.
	BudgetRemaining float64
}

// Allocation is one entry of the urgent-recipient queue.
type Allocation struct {
	RecipientID   models.ProfileID
	OrganRequired string
	UrgencyScore  int
	BestDonorID   models.ProfileID
	Status        AllocationStatus
}

// AllocationStatus tiers the quality of the best candidate found.
type AllocationStatus string

const (
	StatusMatchFound     AllocationStatus = "match_found"
	StatusPotentialMatch AllocationStatus = "potential_match"
	StatusWaiting        AllocationStatus = "waiting"
)

// allocationQueueSize is how many urgent recipients the queue surfaces.
const allocationQueueSize = 5

// scorer is the seam between the ranker and the scoring engine. Tests
// substitute it to drive the deadline paths deterministically.
type scorer interface {
	Score(donor, recipient *models.Profile) (Breakdown, error)
}

// Service ranks candidate donors for recipients. It is read-only over the
// profile store: no scores are cached or persisted anywhere.
type Service struct {
	profiles store.ProfileStore
	engine   scorer
	filter   *privacy.Filter
	ledger   budget.Ledger
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cfg      ServiceConfig
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBudgetLedger enables privacy budget enforcement.
func WithBudgetLedger(ledger budget.Ledger) Option {
	return func(s *Service) { s.ledger = ledger }
}

// WithConfig overrides the ranking defaults.
func WithConfig(cfg ServiceConfig) Option {
	return func(s *Service) { s.cfg = cfg }
}

// NewService constructs the ranker.
func NewService(profiles store.ProfileStore, engine *Engine, filter *privacy.Filter, opts ...Option) (*Service, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("scoring engine is required")
	}
	if filter == nil {
		return nil, fmt.Errorf("privacy filter is required")
	}

	svc := &Service{
		profiles: profiles,
		engine:   engine,
		filter:   filter,
		cfg:      DefaultServiceConfig(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.cfg.DefaultTopN <= 0 || svc.cfg.MaxConcurrency <= 0 || svc.cfg.Deadline <= 0 {
		return nil, fmt.Errorf("ranking config values must be positive")
	}
	return svc, nil
}

// DefaultTopN exposes the configured default result count.
func (s *Service) DefaultTopN() int {
	return s.cfg.DefaultTopN
}

// Rank produces the ordered candidate list for one recipient.
//
// Ordering uses the exact score so repeated queries agree; noise protects
// disclosure, not the ranking decision. Ties break by urgency sub-score
// descending, then donor id ascending, so results are reproducible.
func (s *Service) Rank(ctx context.Context, recipientID models.ProfileID, topN int) (*RankResult, error) {
	start := time.Now()

	if topN <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "topN must be positive")
	}

	recipient, err := s.profiles.Get(ctx, recipientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load recipient")
	}
	if recipient == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "recipient "+string(recipientID)+" not found")
	}
	if !recipient.IsRecipient() {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "profile "+string(recipientID)+" is not a recipient")
	}
	if err := validateProfile(recipient); err != nil {
		return nil, err
	}

	budgetRemaining := -1.0
	if s.ledger != nil {
		remaining, err := s.ledger.Spend(ctx, string(recipientID), s.filter.Epsilon())
		if err != nil {
			if dErrors.Is(err, dErrors.CodeBudgetExhausted) && s.metrics != nil {
				s.metrics.IncrementBudgetRefusals()
			}
			return nil, err
		}
		budgetRemaining = remaining
	}

	// One batched pool read per ranking request; scoring itself never
	// touches the store again.
	donors, err := s.profiles.List(ctx, models.RoleDonor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load donor pool")
	}

	// Hard eligibility gate: blood-incompatible donors are never scored
	// and never appear in output at any rank.
	eligible := donors[:0:0]
	for _, d := range donors {
		if BloodCompatible(d.BloodType, recipient.BloodType) {
			eligible = append(eligible, d)
		}
	}
	if s.metrics != nil {
		s.metrics.AddCandidatesExcluded(len(donors) - len(eligible))
	}

	matches, partial, err := s.scoreCandidates(ctx, recipient, eligible)
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Breakdown.ExactScore != matches[j].Breakdown.ExactScore {
			return matches[i].Breakdown.ExactScore > matches[j].Breakdown.ExactScore
		}
		if matches[i].Breakdown.Urgency != matches[j].Breakdown.Urgency {
			return matches[i].Breakdown.Urgency > matches[j].Breakdown.Urgency
		}
		return matches[i].Donor.ID < matches[j].Donor.ID
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}

	// Noise is drawn after truncation, once per returned match, from a
	// request-scoped source.
	rng, err := privacy.NewNoiseSource()
	if err != nil {
		return nil, err
	}
	for i := range matches {
		noisy, err := s.filter.ApplyNoise(matches[i].Breakdown.ExactScore, rng)
		if err != nil {
			return nil, err
		}
		matches[i].NoisyScore = noisy
	}

	if s.metrics != nil {
		s.metrics.IncrementRankingsServed()
		if partial {
			s.metrics.IncrementRankingsPartial()
		}
		s.metrics.ObserveRankingDuration(time.Since(start).Seconds())
	}

	return &RankResult{
		Recipient:       recipient,
		Matches:         matches,
		Partial:         partial,
		BudgetRemaining: budgetRemaining,
	}, nil
}

// scoreCandidates scores eligible donors concurrently. Candidates are
// independent and read immutable profiles, so no coordination beyond the
// result slice is needed. On deadline expiry the scored subset is
// returned with partial=true; a deadline with nothing scored is an error.
func (s *Service) scoreCandidates(ctx context.Context, recipient *models.Profile, eligible []*models.Profile) ([]Match, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Deadline)
	defer cancel()

	results := make([]*Match, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)

	for i, donor := range eligible {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			b, err := s.engine.Score(donor, recipient)
			if err != nil {
				// A malformed donor degrades to exclusion rather
				// than failing the whole ranking.
				if s.logger != nil {
					s.logger.WarnContext(gctx, "skipping unscorable donor",
						"donor_id", donor.ID,
						"error", err,
					)
				}
				return nil
			}
			results[i] = &Match{Donor: donor, Breakdown: b}
			return nil
		})
	}
	_ = g.Wait()

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		if r != nil {
			matches = append(matches, *r)
		}
	}
	if s.metrics != nil {
		s.metrics.AddCandidatesScored(len(matches))
	}

	partial := ctx.Err() != nil && len(matches) < len(eligible)
	if ctx.Err() != nil && len(matches) == 0 && len(eligible) > 0 {
		return nil, false, dErrors.New(dErrors.CodeTimeout, "ranking deadline expired before any candidate was scored")
	}
	return matches, partial, nil
}

// Allocations builds the urgent-recipient queue: the most urgent
// recipients paired with their single best candidate and a status tier.
// Computed on demand; nothing is persisted.
func (s *Service) Allocations(ctx context.Context) ([]Allocation, error) {
	recipients, err := s.profiles.List(ctx, models.RoleRecipient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load recipients")
	}
	donors, err := s.profiles.List(ctx, models.RoleDonor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load donor pool")
	}

	sort.Slice(recipients, func(i, j int) bool {
		if recipients[i].UrgencyScore != recipients[j].UrgencyScore {
			return recipients[i].UrgencyScore > recipients[j].UrgencyScore
		}
		return recipients[i].ID < recipients[j].ID
	})
	if len(recipients) > allocationQueueSize {
		recipients = recipients[:allocationQueueSize]
	}

	out := make([]Allocation, 0, len(recipients))
	for _, r := range recipients {
		if ctx.Err() != nil {
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "allocation queue cancelled")
		}

		best := Allocation{
			RecipientID:   r.ID,
			OrganRequired: r.OrganRequired,
			UrgencyScore:  r.UrgencyScore,
			Status:        StatusWaiting,
		}
		var bestScore float64
		for _, d := range donors {
			if !BloodCompatible(d.BloodType, r.BloodType) {
				continue
			}
			b, err := s.engine.Score(d, r)
			if err != nil {
				continue
			}
			if b.ExactScore > bestScore {
				bestScore = b.ExactScore
				best.BestDonorID = d.ID
			}
		}
		best.Status = allocationStatus(bestScore)
		out = append(out, best)
	}
	return out, nil
}

// allocationStatus tiers a best score the way the clinical dashboard
// expects: strong candidates above 0.8, plausible ones above 0.5.
func allocationStatus(score float64) AllocationStatus {
	switch {
	case score > 0.8:
		return StatusMatchFound
	case score > 0.5:
		return StatusPotentialMatch
	default:
		return StatusWaiting
	}
}
