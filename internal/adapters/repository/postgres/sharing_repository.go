package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

// SharingRepository は契約ごとの共有設定を PostgreSQL に保存します。
// 設定は毎回ストアから読み込み、キャッシュしません。
type SharingRepository struct {
	pool pgdb.Queryer
}

// NewSharingRepository は SharingRepository を生成します。
func NewSharingRepository(pool pgdb.Queryer) *SharingRepository {
	return &SharingRepository{pool: pool}
}

// Create は共有設定を作成します。
func (r *SharingRepository) Create(ctx context.Context, cfg *sharing.Config) (*sharing.Config, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO sharing_configs (contract_id, share_basic, share_contact, share_education, share_career,
               share_certificates, share_languages, share_military, share_family, share_profile_photo,
               share_documents, share_certificate_files, realtime_sync, updated_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING contract_id, share_basic, share_contact, share_education, share_career,
               share_certificates, share_languages, share_military, share_family, share_profile_photo,
               share_documents, share_certificate_files, realtime_sync, updated_by, created_at, updated_at
    `,
		cfg.ContractID,
		cfg.ShareBasic,
		cfg.ShareContact,
		cfg.ShareEducation,
		cfg.ShareCareer,
		cfg.ShareCertificates,
		cfg.ShareLanguages,
		cfg.ShareMilitary,
		cfg.ShareFamily,
		cfg.ShareProfilePhoto,
		cfg.ShareDocuments,
		cfg.ShareCertificateFiles,
		cfg.RealtimeSync,
		cfg.UpdatedBy,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)

	created, err := scanSharingConfig(row)
	if err != nil {
		return nil, translateSharingPgError(err)
	}
	return created, nil
}

// Update は共有設定を更新します。
func (r *SharingRepository) Update(ctx context.Context, cfg *sharing.Config) (*sharing.Config, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE sharing_configs
           SET share_basic = $1,
               share_contact = $2,
               share_education = $3,
               share_career = $4,
               share_certificates = $5,
               share_languages = $6,
               share_military = $7,
               share_family = $8,
               share_profile_photo = $9,
               share_documents = $10,
               share_certificate_files = $11,
               realtime_sync = $12,
               updated_by = $13,
               updated_at = $14
         WHERE contract_id = $15
        RETURNING contract_id, share_basic, share_contact, share_education, share_career,
               share_certificates, share_languages, share_military, share_family, share_profile_photo,
               share_documents, share_certificate_files, realtime_sync, updated_by, created_at, updated_at
    `,
		cfg.ShareBasic,
		cfg.ShareContact,
		cfg.ShareEducation,
		cfg.ShareCareer,
		cfg.ShareCertificates,
		cfg.ShareLanguages,
		cfg.ShareMilitary,
		cfg.ShareFamily,
		cfg.ShareProfilePhoto,
		cfg.ShareDocuments,
		cfg.ShareCertificateFiles,
		cfg.RealtimeSync,
		cfg.UpdatedBy,
		cfg.UpdatedAt,
		cfg.ContractID,
	)

	updated, err := scanSharingConfig(row)
	if err != nil {
		return nil, translateSharingPgError(err)
	}
	return updated, nil
}

// FindByContractID は契約 ID で共有設定を取得します。
func (r *SharingRepository) FindByContractID(ctx context.Context, contractID string) (*sharing.Config, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT contract_id, share_basic, share_contact, share_education, share_career,
               share_certificates, share_languages, share_military, share_family, share_profile_photo,
               share_documents, share_certificate_files, realtime_sync, updated_by, created_at, updated_at
          FROM sharing_configs
         WHERE contract_id = $1
    `, contractID)

	found, err := scanSharingConfig(row)
	if err != nil {
		return nil, translateSharingPgError(err)
	}
	return found, nil
}

// DeleteByContractID は共有設定を削除します。
func (r *SharingRepository) DeleteByContractID(ctx context.Context, contractID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM sharing_configs WHERE contract_id = $1`, contractID)
	if err != nil {
		return translateSharingPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return sharing.ErrConfigNotFound
	}
	return nil
}

func scanSharingConfig(row pgx.Row) (*sharing.Config, error) {
	var cfg sharing.Config
	if err := row.Scan(
		&cfg.ContractID,
		&cfg.ShareBasic,
		&cfg.ShareContact,
		&cfg.ShareEducation,
		&cfg.ShareCareer,
		&cfg.ShareCertificates,
		&cfg.ShareLanguages,
		&cfg.ShareMilitary,
		&cfg.ShareFamily,
		&cfg.ShareProfilePhoto,
		&cfg.ShareDocuments,
		&cfg.ShareCertificateFiles,
		&cfg.RealtimeSync,
		&cfg.UpdatedBy,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sharing.ErrConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func translateSharingPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return sharing.ErrConfigNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return sharing.ErrConfigAlreadyExists
		case invalidTextRepresentation:
			return sharing.ErrConfigNotFound
		}
	}
	return err
}
