package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const (
	demoEmail    = "demo@nyumba.local"
	demoPassword = "demo-password-1"
)

// DemoAccountSeeder creates a verified demo user with one individual and one
// business profile so local frontends have data to work against.
type DemoAccountSeeder struct{}

func (DemoAccountSeeder) Name() string { return "demo-account" }

func (DemoAccountSeeder) Run(ctx context.Context, db *pgxpool.Pool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	var userID uuid.UUID
	err = db.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, email_verified_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id`,
		demoEmail, "Demo User", string(hash),
	).Scan(&userID)
	if err != nil {
		return fmt.Errorf("upsert demo user: %w", err)
	}

	individualID, err := upsertProfile(ctx, db, userID, "INDIVIDUAL")
	if err != nil {
		return err
	}
	businessID, err := upsertProfile(ctx, db, userID, "BUSINESS")
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO individual_profiles (profile_id, first_name, last_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id) DO NOTHING`,
		individualID, "Demo", "User",
	)
	if err != nil {
		return fmt.Errorf("seed individual detail: %w", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO business_profiles (profile_id, business_name)
		VALUES ($1, $2)
		ON CONFLICT (profile_id) DO NOTHING`,
		businessID, "Demo Properties Ltd",
	)
	if err != nil {
		return fmt.Errorf("seed business detail: %w", err)
	}

	roles := []struct {
		profileID uuid.UUID
		role      string
	}{
		{individualID, "TENANT"},
		{businessID, "LANDLORD"},
		{businessID, "AGENT"},
	}
	for _, r := range roles {
		_, err = db.Exec(ctx, `
			INSERT INTO profile_roles (profile_id, role, is_active)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (profile_id, role) DO NOTHING`,
			r.profileID, r.role,
		)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", r.role, err)
		}
	}

	_, err = db.Exec(ctx, `
		UPDATE users SET active_profile_id = $2, updated_at = now()
		WHERE id = $1 AND active_profile_id IS NULL`,
		userID, individualID,
	)
	if err != nil {
		return fmt.Errorf("set demo active profile: %w", err)
	}

	return nil
}

func upsertProfile(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, profileType string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, profile_type)
		VALUES ($1, $2)
		ON CONFLICT (user_id, profile_type) DO UPDATE SET updated_at = now()
		RETURNING id`,
		userID, profileType,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert %s profile: %w", profileType, err)
	}
	return id, nil
}
