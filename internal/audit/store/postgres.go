package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifebridge/internal/audit"
)

// PostgresStore persists the disclosure trail in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed disclosure store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event audit.DisclosureEvent) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO score_disclosures
			(id, request_id, subject, role, recipient_id, donor_count, client_ip, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.RequestID, event.Subject, event.Role,
		event.RecipientID, event.DonorCount, event.ClientIP, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append disclosure: %w", err)
	}
	return nil
}
