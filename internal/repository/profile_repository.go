package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nyumba/internal/domain/profile"
)

type PostgresProfileRepository struct {
	db *pgxpool.Pool
}

func NewPostgresProfileRepository(db *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// Create inserts the profile row and its matching detail row in one
// transaction so a profile never exists without its detail record.
func (r *PostgresProfileRepository) Create(ctx context.Context, p profile.Profile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, user_id, profile_type, is_certified, phone_number, country, city, address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.UserID, p.Type, p.IsCertified, p.PhoneNumber, p.Country, p.City, p.Address,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return profile.ErrTypeExists
		}
		return err
	}

	switch p.Type {
	case profile.TypeIndividual:
		d := p.Individual
		if d == nil {
			d = &profile.IndividualDetail{}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO individual_profiles (profile_id, first_name, last_name, date_of_birth, gender, national_id_number)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, d.FirstName, d.LastName, d.DateOfBirth, d.Gender, d.NationalIDNumber,
		)
	case profile.TypeBusiness:
		d := p.Business
		if d == nil {
			d = &profile.BusinessDetail{}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO business_profiles (profile_id, business_name, registration_number, tax_id, legal_representative_name)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.ID, d.BusinessName, d.RegistrationNumber, d.TaxID, d.LegalRepresentativeName,
		)
	default:
		return fmt.Errorf("invalid profile type: %s", p.Type)
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const profileSelect = `
SELECT p.id, p.user_id, p.profile_type, p.is_certified,
       p.phone_number, p.country, p.city, p.address,
       p.created_at, p.updated_at,
       i.first_name, i.last_name, i.date_of_birth, i.gender, i.national_id_number,
       b.business_name, b.registration_number, b.tax_id, b.legal_representative_name
FROM profiles p
LEFT JOIN individual_profiles i ON i.profile_id = p.id
LEFT JOIN business_profiles b ON b.profile_id = p.id`

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	row := r.db.QueryRow(ctx, profileSelect+` WHERE p.id = $1`, id)
	return scanProfile(row)
}

func (r *PostgresProfileRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]profile.Profile, error) {
	rows, err := r.db.Query(ctx, profileSelect+` WHERE p.user_id = $1 ORDER BY p.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresProfileRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	row := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE user_id = $1`, userID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresProfileRepository) ExistsByUserAndType(ctx context.Context, userID uuid.UUID, t profile.Type) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1 AND profile_type = $2)`,
		userID, t,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update writes the contact fields and the detail record in one transaction.
// profile_type and is_certified are deliberately left untouched.
func (r *PostgresProfileRepository) Update(ctx context.Context, p profile.Profile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE profiles SET phone_number = $2, country = $3, city = $4, address = $5, updated_at = now()
		 WHERE id = $1`,
		p.ID, p.PhoneNumber, p.Country, p.City, p.Address,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}

	switch p.Type {
	case profile.TypeIndividual:
		d := p.Individual
		if d == nil {
			d = &profile.IndividualDetail{}
		}
		_, err = tx.Exec(ctx,
			`UPDATE individual_profiles
			 SET first_name = $2, last_name = $3, date_of_birth = $4, gender = $5, national_id_number = $6
			 WHERE profile_id = $1`,
			p.ID, d.FirstName, d.LastName, d.DateOfBirth, d.Gender, d.NationalIDNumber,
		)
	case profile.TypeBusiness:
		d := p.Business
		if d == nil {
			d = &profile.BusinessDetail{}
		}
		_, err = tx.Exec(ctx,
			`UPDATE business_profiles
			 SET business_name = $2, registration_number = $3, tax_id = $4, legal_representative_name = $5
			 WHERE profile_id = $1`,
			p.ID, d.BusinessName, d.RegistrationNumber, d.TaxID, d.LegalRepresentativeName,
		)
	default:
		return fmt.Errorf("invalid profile type: %s", p.Type)
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (profile.Profile, error) {
	var p profile.Profile
	var ind profile.IndividualDetail
	var bus profile.BusinessDetail

	err := row.Scan(
		&p.ID, &p.UserID, &p.Type, &p.IsCertified,
		&p.PhoneNumber, &p.Country, &p.City, &p.Address,
		&p.CreatedAt, &p.UpdatedAt,
		&ind.FirstName, &ind.LastName, &ind.DateOfBirth, &ind.Gender, &ind.NationalIDNumber,
		&bus.BusinessName, &bus.RegistrationNumber, &bus.TaxID, &bus.LegalRepresentativeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}

	switch p.Type {
	case profile.TypeBusiness:
		p.Business = &bus
	default:
		p.Individual = &ind
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
