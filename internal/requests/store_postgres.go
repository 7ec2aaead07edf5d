package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifebridge/internal/registry/models"
)

// PostgresStore persists match requests in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL-backed request store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const requestColumns = `id, recipient_id, donor_id, status, requested_by, created_at, accepted_at`

func (s *PostgresStore) Get(ctx context.Context, id string) (*MatchRequest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM match_requests WHERE id = $1`, id)

	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match request %s: %w", id, err)
	}
	return req, nil
}

func (s *PostgresStore) List(ctx context.Context, recipientID models.ProfileID) ([]*MatchRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM match_requests ORDER BY created_at DESC, id`
	args := []any{}
	if recipientID != "" {
		query = `SELECT ` + requestColumns + ` FROM match_requests WHERE recipient_id = $1 ORDER BY created_at DESC, id`
		args = append(args, string(recipientID))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list match requests: %w", err)
	}
	defer rows.Close()

	var out []*MatchRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list match requests: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Put(ctx context.Context, req *MatchRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_requests (id, recipient_id, donor_id, status, requested_by, created_at, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, string(req.RecipientID), string(req.DonorID), string(req.Status),
		req.RequestedBy, req.CreatedAt, req.AcceptedAt,
	)
	if err != nil {
		return fmt.Errorf("put match request %s: %w", req.ID, err)
	}
	return nil
}

// Accept relies on the conditional UPDATE so the pending-to-accepted
// transition happens at most once even under concurrent accepts.
func (s *PostgresStore) Accept(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE match_requests
		SET status = $2, accepted_at = $3
		WHERE id = $1 AND status = $4`,
		id, string(StatusAccepted), at, string(StatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("accept match request %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanRequest(row pgx.Row) (*MatchRequest, error) {
	var req MatchRequest
	err := row.Scan(&req.ID, &req.RecipientID, &req.DonorID, &req.Status,
		&req.RequestedBy, &req.CreatedAt, &req.AcceptedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
