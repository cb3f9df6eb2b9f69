package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

const profileSelectColumns = `person_id, account_type, linked_company_id, linked_employee_id,
               name, english_name, birth_date, gender, nationality,
               email, phone, mobile_phone, address, address_detail, postal_code, emergency_contact,
               hobby, specialty, military_status, military_branch, military_rank,
               military_start_date, military_end_date, photo_path, created_at, updated_at`

// ProfileRepository は人物プロフィールの PostgreSQL 実装です。
type ProfileRepository struct {
	pool pgdb.Queryer
}

// NewProfileRepository は ProfileRepository を生成します。
func NewProfileRepository(pool pgdb.Queryer) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// FindByPersonID は人物 ID でプロフィールを取得します。
func (r *ProfileRepository) FindByPersonID(ctx context.Context, personID string) (*profile.Profile, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+profileSelectColumns+`
          FROM profiles
         WHERE person_id = $1
    `, personID)

	found, err := scanProfile(row)
	if err != nil {
		return nil, translateProfilePgError(err)
	}
	return found, nil
}

// Update はプロフィールの内容を更新します。アカウント種別と紐付けは変更しません。
func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE profiles
           SET name = $1,
               english_name = $2,
               birth_date = $3,
               gender = $4,
               nationality = $5,
               email = $6,
               phone = $7,
               mobile_phone = $8,
               address = $9,
               address_detail = $10,
               postal_code = $11,
               emergency_contact = $12,
               hobby = $13,
               specialty = $14,
               military_status = $15,
               military_branch = $16,
               military_rank = $17,
               military_start_date = $18,
               military_end_date = $19,
               photo_path = $20,
               updated_at = $21
         WHERE person_id = $22
        RETURNING `+profileSelectColumns,
		p.Name,
		p.EnglishName,
		nullableTime(p.BirthDate),
		p.Gender,
		p.Nationality,
		p.Email,
		p.Phone,
		p.MobilePhone,
		p.Address,
		p.AddressDetail,
		p.PostalCode,
		p.EmergencyContact,
		p.Hobby,
		p.Specialty,
		p.MilitaryStatus,
		p.MilitaryBranch,
		p.MilitaryRank,
		nullableTime(p.MilitaryStartDate),
		nullableTime(p.MilitaryEndDate),
		p.PhotoPath,
		p.UpdatedAt,
		p.PersonID,
	)

	updated, err := scanProfile(row)
	if err != nil {
		return nil, translateProfilePgError(err)
	}
	return updated, nil
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	var (
		p           profile.Profile
		accountType string
	)

	if err := row.Scan(
		&p.PersonID,
		&accountType,
		&p.LinkedCompanyID,
		&p.LinkedEmployeeID,
		&p.Name,
		&p.EnglishName,
		&p.BirthDate,
		&p.Gender,
		&p.Nationality,
		&p.Email,
		&p.Phone,
		&p.MobilePhone,
		&p.Address,
		&p.AddressDetail,
		&p.PostalCode,
		&p.EmergencyContact,
		&p.Hobby,
		&p.Specialty,
		&p.MilitaryStatus,
		&p.MilitaryBranch,
		&p.MilitaryRank,
		&p.MilitaryStartDate,
		&p.MilitaryEndDate,
		&p.PhotoPath,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, err
	}

	p.AccountType = profile.AccountType(accountType)
	p.BirthDate = dateOnly(p.BirthDate)
	p.MilitaryStartDate = dateOnly(p.MilitaryStartDate)
	p.MilitaryEndDate = dateOnly(p.MilitaryEndDate)
	return &p, nil
}

func translateProfilePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return profile.ErrProfileNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return profile.ErrInvalidID
	}
	return err
}
