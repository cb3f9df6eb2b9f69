package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/attachment"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

const attachmentSelectColumns = `id, owner_type, owner_id, category, file_name, storage_path, mime_type, size_bytes,
               source_type, source_contract_id, source_attachment_id, deletable_on_termination, frozen_at, created_at`

// AttachmentRepository は添付ファイルのメタデータを PostgreSQL に保存します。
type AttachmentRepository struct {
	pool pgdb.Queryer
}

// NewAttachmentRepository は AttachmentRepository を生成します。
func NewAttachmentRepository(pool pgdb.Queryer) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

// ListByOwner は所有者とカテゴリで添付ファイルを取得します。
func (r *AttachmentRepository) ListByOwner(ctx context.Context, ownerType attachment.OwnerType, ownerID string, category attachment.Category) ([]*attachment.Attachment, error) {
	return r.query(ctx, `
        SELECT `+attachmentSelectColumns+`
          FROM attachments
         WHERE owner_type = $1 AND owner_id = $2 AND category = $3
         ORDER BY created_at, id
    `, string(ownerType), ownerID, string(category))
}

// ListSynced は契約経由で同期された添付ファイルを取得します。
func (r *AttachmentRepository) ListSynced(ctx context.Context, contractID string, category attachment.Category) ([]*attachment.Attachment, error) {
	return r.query(ctx, `
        SELECT `+attachmentSelectColumns+`
          FROM attachments
         WHERE source_type = 'synced' AND source_contract_id = $1 AND category = $2
         ORDER BY created_at, id
    `, contractID, string(category))
}

// DeleteSynced は契約経由で同期された添付ファイルの行を削除し、削除した行を返します。
// 凍結済みの行は削除しません。
func (r *AttachmentRepository) DeleteSynced(ctx context.Context, contractID string, category attachment.Category) ([]*attachment.Attachment, error) {
	return r.query(ctx, `
        DELETE FROM attachments
         WHERE source_type = 'synced' AND source_contract_id = $1 AND category = $2
           AND frozen_at IS NULL
        RETURNING `+attachmentSelectColumns, contractID, string(category))
}

// Create は添付ファイルの行を作成します。
func (r *AttachmentRepository) Create(ctx context.Context, a *attachment.Attachment) (*attachment.Attachment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO attachments (`+attachmentSelectColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING `+attachmentSelectColumns,
		a.ID,
		string(a.OwnerType),
		a.OwnerID,
		string(a.Category),
		a.FileName,
		a.StoragePath,
		a.MimeType,
		a.SizeBytes,
		string(a.SourceType),
		a.SourceContractID,
		a.SourceAttachmentID,
		a.DeletableOnTermination,
		a.FrozenAt,
		a.CreatedAt,
	)

	created, err := scanAttachment(row)
	if err != nil {
		return nil, translateAttachmentPgError(err)
	}
	return created, nil
}

// FreezeDeletable は契約終了時に削除対象の添付ファイルを凍結し、件数を返します。
func (r *AttachmentRepository) FreezeDeletable(ctx context.Context, contractID string, at time.Time) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE attachments
           SET frozen_at = $2
         WHERE source_contract_id = $1
           AND deletable_on_termination
           AND frozen_at IS NULL
    `, contractID, at)
	if err != nil {
		return 0, translateAttachmentPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteFrozen は凍結済みの添付ファイルの行を削除し、削除した行を返します。
func (r *AttachmentRepository) DeleteFrozen(ctx context.Context, contractID string) ([]*attachment.Attachment, error) {
	return r.query(ctx, `
        DELETE FROM attachments
         WHERE source_contract_id = $1
           AND frozen_at IS NOT NULL
        RETURNING `+attachmentSelectColumns, contractID)
}

func (r *AttachmentRepository) query(ctx context.Context, sql string, args ...any) ([]*attachment.Attachment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, translateAttachmentPgError(err)
	}
	defer rows.Close()

	out := make([]*attachment.Attachment, 0)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, translateAttachmentPgError(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, translateAttachmentPgError(err)
	}
	return out, nil
}

func scanAttachment(row pgx.Row) (*attachment.Attachment, error) {
	var (
		a                               attachment.Attachment
		ownerType, category, sourceType string
	)

	if err := row.Scan(
		&a.ID,
		&ownerType,
		&a.OwnerID,
		&category,
		&a.FileName,
		&a.StoragePath,
		&a.MimeType,
		&a.SizeBytes,
		&sourceType,
		&a.SourceContractID,
		&a.SourceAttachmentID,
		&a.DeletableOnTermination,
		&a.FrozenAt,
		&a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attachment.ErrAttachmentNotFound
		}
		return nil, err
	}

	a.OwnerType = attachment.OwnerType(ownerType)
	a.Category = attachment.Category(category)
	a.SourceType = attachment.SourceType(sourceType)
	return &a, nil
}

func translateAttachmentPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return attachment.ErrAttachmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return attachment.ErrAttachmentNotFound
	}
	return err
}
