package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/termination"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

// SnapshotRepository は契約終了時点の共有データを JSONB で保存します。
type SnapshotRepository struct {
	pool pgdb.Queryer
}

// NewSnapshotRepository は SnapshotRepository を生成します。
func NewSnapshotRepository(pool pgdb.Queryer) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Create はスナップショットを保存します。
func (r *SnapshotRepository) Create(ctx context.Context, s *termination.Snapshot) (*termination.Snapshot, error) {
	doc, err := json.Marshal(s.Document)
	if err != nil {
		return nil, fmt.Errorf("termination_snapshots: encode document: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO termination_snapshots (id, contract_id, employee_id, person_id, company_id, document, retention_until, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, contract_id, employee_id, person_id, company_id, document, retention_until, created_at
    `, s.ID, s.ContractID, s.EmployeeID, s.PersonID, s.CompanyID, doc, s.RetentionUntil, s.CreatedAt)

	created, err := scanSnapshot(row)
	if err != nil {
		return nil, translateSnapshotPgError(err)
	}
	return created, nil
}

// FindByContractID は契約 ID でスナップショットを取得します。
func (r *SnapshotRepository) FindByContractID(ctx context.Context, contractID string) (*termination.Snapshot, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, contract_id, employee_id, person_id, company_id, document, retention_until, created_at
          FROM termination_snapshots
         WHERE contract_id = $1
    `, contractID)

	found, err := scanSnapshot(row)
	if err != nil {
		return nil, translateSnapshotPgError(err)
	}
	return found, nil
}

// DeleteByContractID はスナップショットを削除します。
func (r *SnapshotRepository) DeleteByContractID(ctx context.Context, contractID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM termination_snapshots WHERE contract_id = $1`, contractID)
	if err != nil {
		return translateSnapshotPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return termination.ErrSnapshotNotFound
	}
	return nil
}

func scanSnapshot(row pgx.Row) (*termination.Snapshot, error) {
	var (
		s   termination.Snapshot
		doc []byte
	)

	if err := row.Scan(&s.ID, &s.ContractID, &s.EmployeeID, &s.PersonID, &s.CompanyID, &doc, &s.RetentionUntil, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, termination.ErrSnapshotNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(doc, &s.Document); err != nil {
		return nil, fmt.Errorf("termination_snapshots: decode document: %w", err)
	}
	return &s, nil
}

func translateSnapshotPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return termination.ErrSnapshotNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return termination.ErrSnapshotNotFound
	}
	return err
}
