package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifebridge/internal/registry/models"
)

// PostgresProfileStore persists profiles in PostgreSQL.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(pool *pgxpool.Pool) *PostgresProfileStore {
	return &PostgresProfileStore{pool: pool}
}

const profileColumns = `id, role, blood_type, age, location, comorbidities,
	hla_markers, urgency_score, organs_available, organ_required, created_at`

func (s *PostgresProfileStore) Get(ctx context.Context, id models.ProfileID) (*models.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, string(id))

	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return p, nil
}

func (s *PostgresProfileStore) List(ctx context.Context, role models.Role) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY id`
	args := []any{}
	if role != "" {
		query = `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1 ORDER BY id`
		args = append(args, string(role))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// Create inserts the profile unless the id is already taken. ON CONFLICT
// DO NOTHING keeps the insert atomic, so concurrent intakes of the same id
// cannot both win.
func (s *PostgresProfileStore) Create(ctx context.Context, profile *models.Profile) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, role, blood_type, age, location, comorbidities,
			hla_markers, urgency_score, organs_available, organ_required, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`,
		string(profile.ID), string(profile.Role), string(profile.BloodType),
		profile.Age, profile.Location, profile.Comorbidities,
		profile.HLAMarkers, profile.UrgencyScore, profile.OrgansAvailable,
		profile.OrganRequired, profile.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("create profile %s: %w", profile.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresProfileStore) Put(ctx context.Context, profile *models.Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, role, blood_type, age, location, comorbidities,
			hla_markers, urgency_score, organs_available, organ_required, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			location = EXCLUDED.location,
			comorbidities = EXCLUDED.comorbidities,
			hla_markers = EXCLUDED.hla_markers,
			urgency_score = EXCLUDED.urgency_score,
			organs_available = EXCLUDED.organs_available,
			organ_required = EXCLUDED.organ_required`,
		string(profile.ID), string(profile.Role), string(profile.BloodType),
		profile.Age, profile.Location, profile.Comorbidities,
		profile.HLAMarkers, profile.UrgencyScore, profile.OrgansAvailable,
		profile.OrganRequired, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put profile %s: %w", profile.ID, err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Role, &p.BloodType, &p.Age, &p.Location,
		&p.Comorbidities, &p.HLAMarkers, &p.UrgencyScore,
		&p.OrgansAvailable, &p.OrganRequired, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
