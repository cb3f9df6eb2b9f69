package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/company"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

// CompanyRepository は PostgreSQL を利用した会社情報の参照実装です。
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// FindByID は ID で会社を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, numbering_prefix, numbering_digits, numbering_include_year, created_at, updated_at
          FROM companies
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		id                   string
		name                 string
		prefix               sql.NullString
		digits               sql.NullInt32
		includeYear          sql.NullBool
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &prefix, &digits, &includeYear, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	c := &company.Company{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}

	// 採番ルールは prefix が設定されている場合のみ会社固有とみなす
	if prefix.Valid && prefix.String != "" {
		policy := &company.NumberingPolicy{Prefix: prefix.String}
		if digits.Valid {
			policy.Digits = int(digits.Int32)
		}
		if includeYear.Valid {
			policy.IncludeYear = includeYear.Bool
		}
		c.Numbering = policy
	}

	return c, nil
}

func translateCompanyPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return company.ErrCompanyNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentation:
			return company.ErrInvalidID
		case foreignKeyViolationCode:
			return company.ErrCompanyNotFound
		}
	}

	return err
}

// SequenceRepository は会社・年ごとの社員番号の連番を払い出します。
type SequenceRepository struct {
	pool pgdb.Queryer
}

// NewSequenceRepository は SequenceRepository を生成します。
func NewSequenceRepository(pool pgdb.Queryer) *SequenceRepository {
	return &SequenceRepository{pool: pool}
}

// Next は連番を 1 進めて新しい値を返します。年を含めない採番では scopeYear に 0 を渡します。
// 行ロックにより同時実行されても同じ値は払い出されません。
func (r *SequenceRepository) Next(ctx context.Context, companyID string, scopeYear int) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employee_number_sequences (company_id, scope_year, last_value)
        VALUES ($1, $2, 1)
        ON CONFLICT (company_id, scope_year)
        DO UPDATE SET last_value = employee_number_sequences.last_value + 1
        RETURNING last_value
    `, companyID, scopeYear)

	var next int64
	if err := row.Scan(&next); err != nil {
		return 0, translateCompanyPgError(err)
	}
	return next, nil
}
