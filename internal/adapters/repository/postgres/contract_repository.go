package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

const (
	uniqueViolationCode       = "23505"
	foreignKeyViolationCode   = "23503"
	invalidTextRepresentation = "22P02"

	contractActivePairIndex  = "contracts_active_pair_key"
	contractPendingPairIndex = "contracts_pending_pair_key"
)

const (
	activeContractStatusesSQL   = `'approved', 'termination_requested'`
	requestedContractStatusSQL  = `'requested'`
	terminatedContractStatusSQL = `'terminated'`
)

const contractSelectColumns = `id, person_id, company_id, employee_id, status, contract_type, position, department,
               employee_number, message, requested_by, requested_at, approved_by, approved_at,
               rejected_by, rejected_at, rejection_reason, cancelled_by, cancelled_at, cancellation_reason,
               termination_requested_by, termination_requested_at, termination_reason,
               termination_rejected_by, termination_rejected_at, termination_rejection_reason,
               terminated_by, terminated_at, retention_until, retention_purged_at, created_at, updated_at`

// ContractRepository は PostgreSQL を利用した契約レコードの永続化実装です。
type ContractRepository struct {
	pool pgdb.Queryer
}

// NewContractRepository は ContractRepository を生成します。
func NewContractRepository(pool pgdb.Queryer) *ContractRepository {
	return &ContractRepository{pool: pool}
}

// Create は契約を新規作成します。
func (r *ContractRepository) Create(ctx context.Context, c *contract.Contract) (*contract.Contract, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO contracts (id, person_id, company_id, employee_id, status, contract_type, position, department,
               employee_number, message, requested_by, requested_at, approved_by, approved_at,
               rejected_by, rejected_at, rejection_reason, cancelled_by, cancelled_at, cancellation_reason,
               termination_requested_by, termination_requested_at, termination_reason,
               termination_rejected_by, termination_rejected_at, termination_rejection_reason,
               terminated_by, terminated_at, retention_until, retention_purged_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
                $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
        RETURNING `+contractSelectColumns,
		c.ID,
		c.PersonID,
		c.CompanyID,
		c.EmployeeID,
		string(c.Status),
		c.ContractType,
		c.Position,
		c.Department,
		c.EmployeeNumber,
		c.Message,
		c.RequestedBy,
		c.RequestedAt,
		c.ApprovedBy,
		c.ApprovedAt,
		c.RejectedBy,
		c.RejectedAt,
		c.RejectionReason,
		c.CancelledBy,
		c.CancelledAt,
		c.CancellationReason,
		c.TerminationRequestedBy,
		c.TerminationRequestedAt,
		c.TerminationReason,
		c.TerminationRejectedBy,
		c.TerminationRejectedAt,
		c.TerminationRejectionReason,
		c.TerminatedBy,
		c.TerminatedAt,
		c.RetentionUntil,
		c.RetentionPurgedAt,
		c.CreatedAt,
		c.UpdatedAt,
	)

	created, err := scanContract(row)
	if err != nil {
		return nil, translateContractPgError(err)
	}
	return created, nil
}

// Update は契約の状態と各遷移の記録を更新します。当事者の組み合わせは変更しません。
func (r *ContractRepository) Update(ctx context.Context, c *contract.Contract) (*contract.Contract, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE contracts
           SET employee_id = $1,
               status = $2,
               contract_type = $3,
               position = $4,
               department = $5,
               employee_number = $6,
               message = $7,
               approved_by = $8,
               approved_at = $9,
               rejected_by = $10,
               rejected_at = $11,
               rejection_reason = $12,
               cancelled_by = $13,
               cancelled_at = $14,
               cancellation_reason = $15,
               termination_requested_by = $16,
               termination_requested_at = $17,
               termination_reason = $18,
               termination_rejected_by = $19,
               termination_rejected_at = $20,
               termination_rejection_reason = $21,
               terminated_by = $22,
               terminated_at = $23,
               retention_until = $24,
               retention_purged_at = $25,
               updated_at = $26
         WHERE id = $27
        RETURNING `+contractSelectColumns,
		c.EmployeeID,
		string(c.Status),
		c.ContractType,
		c.Position,
		c.Department,
		c.EmployeeNumber,
		c.Message,
		c.ApprovedBy,
		c.ApprovedAt,
		c.RejectedBy,
		c.RejectedAt,
		c.RejectionReason,
		c.CancelledBy,
		c.CancelledAt,
		c.CancellationReason,
		c.TerminationRequestedBy,
		c.TerminationRequestedAt,
		c.TerminationReason,
		c.TerminationRejectedBy,
		c.TerminationRejectedAt,
		c.TerminationRejectionReason,
		c.TerminatedBy,
		c.TerminatedAt,
		c.RetentionUntil,
		c.RetentionPurgedAt,
		c.UpdatedAt,
		c.ID,
	)

	updated, err := scanContract(row)
	if err != nil {
		return nil, translateContractPgError(err)
	}
	return updated, nil
}

// FindByID は ID で契約を取得します。
func (r *ContractRepository) FindByID(ctx context.Context, id string) (*contract.Contract, error) {
	return r.findOne(ctx, `
        SELECT `+contractSelectColumns+`
          FROM contracts
         WHERE id = $1
    `, id)
}

// FindByIDForUpdate は行ロックを取得したうえで契約を取得します。トランザクション内で呼び出してください。
func (r *ContractRepository) FindByIDForUpdate(ctx context.Context, id string) (*contract.Contract, error) {
	return r.findOne(ctx, `
        SELECT `+contractSelectColumns+`
          FROM contracts
         WHERE id = $1
           FOR UPDATE
    `, id)
}

// FindActiveByPair は人物と会社の組み合わせで有効な契約を取得します。
func (r *ContractRepository) FindActiveByPair(ctx context.Context, personID, companyID string) (*contract.Contract, error) {
	return r.findOne(ctx, `
        SELECT `+contractSelectColumns+`
          FROM contracts
         WHERE person_id = $1 AND company_id = $2
           AND status IN (`+activeContractStatusesSQL+`)
         LIMIT 1
    `, personID, companyID)
}

// FindPendingByPair は人物と会社の組み合わせで承認待ちの申請を取得します。
func (r *ContractRepository) FindPendingByPair(ctx context.Context, personID, companyID string) (*contract.Contract, error) {
	return r.findOne(ctx, `
        SELECT `+contractSelectColumns+`
          FROM contracts
         WHERE person_id = $1 AND company_id = $2
           AND status = `+requestedContractStatusSQL+`
         LIMIT 1
    `, personID, companyID)
}

// ListActiveByPerson は人物の有効な契約をすべて返します。
func (r *ContractRepository) ListActiveByPerson(ctx context.Context, personID string) ([]*contract.Contract, error) {
	return r.list(ctx, `
        SELECT `+contractSelectColumns+`
          FROM contracts
         WHERE person_id = $1
           AND status IN (`+activeContractStatusesSQL+`)
         ORDER BY approved_at, id
    `, personID)
}

// ListStaleRequests は requestedBefore より前に申請され、まだ応答の無い契約を返します。
func (r *ContractRepository) ListStaleRequests(ctx context.Context, requestedBefore time.Time, limit int) ([]*contract.Contract, error) {
	return r.list(ctx, `
        SELECT `+contractSelectColumns+`
          FROM contracts
         WHERE status = `+requestedContractStatusSQL+`
           AND requested_at < $1
         ORDER BY requested_at, id
         LIMIT $2
    `, requestedBefore, limit)
}

// ListRetentionElapsed は保持期間を過ぎ、まだ削除処理されていない終了済み契約を返します。
func (r *ContractRepository) ListRetentionElapsed(ctx context.Context, now time.Time, limit int) ([]*contract.Contract, error) {
	return r.list(ctx, `
        SELECT `+contractSelectColumns+`
          FROM contracts
         WHERE status = `+terminatedContractStatusSQL+`
           AND retention_purged_at IS NULL
           AND retention_until <= $1
         ORDER BY retention_until, id
         LIMIT $2
    `, now, limit)
}

func (r *ContractRepository) findOne(ctx context.Context, query string, args ...any) (*contract.Contract, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanContract(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateContractPgError(err)
	}
	return found, nil
}

func (r *ContractRepository) list(ctx context.Context, query string, args ...any) ([]*contract.Contract, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateContractPgError(err)
	}
	defer rows.Close()

	contracts := make([]*contract.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, translateContractPgError(err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateContractPgError(err)
	}
	return contracts, nil
}

func scanContract(row pgx.Row) (*contract.Contract, error) {
	var (
		c      contract.Contract
		status string
	)

	if err := row.Scan(
		&c.ID,
		&c.PersonID,
		&c.CompanyID,
		&c.EmployeeID,
		&status,
		&c.ContractType,
		&c.Position,
		&c.Department,
		&c.EmployeeNumber,
		&c.Message,
		&c.RequestedBy,
		&c.RequestedAt,
		&c.ApprovedBy,
		&c.ApprovedAt,
		&c.RejectedBy,
		&c.RejectedAt,
		&c.RejectionReason,
		&c.CancelledBy,
		&c.CancelledAt,
		&c.CancellationReason,
		&c.TerminationRequestedBy,
		&c.TerminationRequestedAt,
		&c.TerminationReason,
		&c.TerminationRejectedBy,
		&c.TerminationRejectedAt,
		&c.TerminationRejectionReason,
		&c.TerminatedBy,
		&c.TerminatedAt,
		&c.RetentionUntil,
		&c.RetentionPurgedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contract.ErrContractNotFound
		}
		return nil, err
	}

	parsed, err := contract.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", c.ID, err)
	}
	c.Status = parsed
	return &c, nil
}

func translateContractPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return contract.ErrContractNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case contractActivePairIndex:
				return contract.ErrDuplicateActiveContract
			case contractPendingPairIndex:
				return contract.ErrPendingRequestExists
			}
		case invalidTextRepresentation:
			return contract.ErrContractNotFound
		}
	}

	return err
}
