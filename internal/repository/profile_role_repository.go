package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nyumba/internal/domain/profile"
)

type PostgresProfileRoleRepository struct {
	db *pgxpool.Pool
}

func NewPostgresProfileRoleRepository(db *pgxpool.Pool) *PostgresProfileRoleRepository {
	return &PostgresProfileRoleRepository{db: db}
}

func (r *PostgresProfileRoleRepository) ListByProfileID(ctx context.Context, profileID uuid.UUID) ([]profile.ProfileRole, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, profile_id, role, is_active, created_at, updated_at
		 FROM profile_roles
		 WHERE profile_id = $1
		 ORDER BY created_at ASC`,
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profile.ProfileRole, 0)
	for rows.Next() {
		var pr profile.ProfileRole
		if err := rows.Scan(&pr.ID, &pr.ProfileID, &pr.Role, &pr.IsActive, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (r *PostgresProfileRoleRepository) Get(ctx context.Context, profileID uuid.UUID, role profile.Role) (profile.ProfileRole, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, profile_id, role, is_active, created_at, updated_at
		 FROM profile_roles
		 WHERE profile_id = $1 AND role = $2`,
		profileID, role,
	)

	var pr profile.ProfileRole
	if err := row.Scan(&pr.ID, &pr.ProfileID, &pr.Role, &pr.IsActive, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.ProfileRole{}, profile.ErrRoleNotFound
		}
		return profile.ProfileRole{}, err
	}
	return pr, nil
}

// Upsert relies on the (profile_id, role) unique constraint so a concurrent
// double add still leaves a single row.
func (r *PostgresProfileRoleRepository) Upsert(ctx context.Context, profileID uuid.UUID, role profile.Role, active bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO profile_roles (id, profile_id, role, is_active)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (profile_id, role)
		 DO UPDATE SET is_active = EXCLUDED.is_active, updated_at = now()`,
		uuid.New(), profileID, role, active,
	)
	return err
}
