package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	dErrors "lifebridge/pkg/domain-errors"
	"lifebridge/pkg/requestcontext"
)

// Publisher emits disclosure events synchronously. The caller blocks until
// the write succeeds; on failure the caller MUST withhold the exact score.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a disclosure publisher over the given store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records one exact-score disclosure. Returns an error if the trail
// write fails; the revealing operation must then fail too.
func (p *Publisher) Emit(ctx context.Context, event DisclosureEvent) error {
	if event.Subject == "" {
		return dErrors.New(dErrors.CodeInternal, "disclosure event requires a subject")
	}
	if event.RecipientID == "" {
		return dErrors.New(dErrors.CodeInternal, "disclosure event requires a recipient id")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		// The middleware-stamped arrival time keeps the trail consistent
		// with request logs for the same request id.
		event.OccurredAt = requestcontext.Now(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "disclosure audit failed, withholding exact scores",
				"subject", event.Subject,
				"recipient_id", event.RecipientID,
				"error", err,
			)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "disclosure audit persistence failed")
	}

	// The reveal itself is always worth a log line: exact exposure is a
	// privacy risk even when authorized.
	if p.logger != nil {
		p.logger.WarnContext(ctx, "exact scores disclosed",
			"subject", event.Subject,
			"role", event.Role,
			"recipient_id", event.RecipientID,
			"donor_count", event.DonorCount,
			"request_id", event.RequestID,
		)
	}
	return nil
}
