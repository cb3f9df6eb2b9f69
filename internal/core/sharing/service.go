package sharing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/core/contract"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// ContractReader は共有設定の操作に必要な契約の参照です。
type ContractReader interface {
	FindByID(ctx context.Context, id string) (*contract.Contract, error)
}

// Service は共有設定の参照・変更を提供します。
type Service struct {
	repo      Repository
	contracts ContractReader
	clock     Clock
	tx        TransactionManager
	logger    *zap.Logger
}

// NewService は Service を生成します。
func NewService(repo Repository, contracts ContractReader, clock Clock, tx TransactionManager, logger *zap.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, contracts: contracts, clock: clock, tx: tx, logger: logger}
}

// UpdateSettingsInput は共有設定の部分更新です。nil の項目は変更しません。
type UpdateSettingsInput struct {
	ContractID string

	ShareBasic        *bool
	ShareContact      *bool
	ShareEducation    *bool
	ShareCareer       *bool
	ShareCertificates *bool
	ShareLanguages    *bool
	ShareMilitary     *bool
	ShareFamily       *bool

	ShareProfilePhoto     *bool
	ShareDocuments        *bool
	ShareCertificateFiles *bool

	RealtimeSync *bool
}

// GetSettings は契約の当事者に共有設定を返します。
func (s *Service) GetSettings(ctx context.Context, actor contract.Actor, contractID string) (*Config, error) {
	if strings.TrimSpace(contractID) == "" {
		return nil, fmt.Errorf("contract_id: %w", contract.ErrValidation)
	}

	var cfg *Config
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := s.contracts.FindByID(txCtx, contractID)
		if err != nil {
			return err
		}
		if _, ok := c.PartyOf(actor); !ok {
			return contract.ErrPermissionDenied
		}
		cfg, err = s.repo.FindByContractID(txCtx, contractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateSettings は会社側が有効な契約の共有設定を変更します。
func (s *Service) UpdateSettings(ctx context.Context, actor contract.Actor, in UpdateSettingsInput) (*Config, error) {
	if strings.TrimSpace(in.ContractID) == "" {
		return nil, fmt.Errorf("contract_id: %w", contract.ErrValidation)
	}

	var updated *Config
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, err := s.contracts.FindByID(txCtx, in.ContractID)
		if err != nil {
			return err
		}
		party, ok := c.PartyOf(actor)
		if !ok || party != contract.PartyCompany {
			return contract.ErrPermissionDenied
		}
		if !c.Status.IsActive() {
			return contract.ErrContractNotActive
		}

		cfg, err := s.repo.FindByContractID(txCtx, in.ContractID)
		if err != nil {
			return err
		}
		in.apply(cfg)
		cfg.UpdatedBy = &actor.UserID
		cfg.UpdatedAt = s.clock.Now()

		updated, err = s.repo.Update(txCtx, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sharing settings updated",
		zap.String("contract_id", in.ContractID),
		zap.String("actor_id", actor.UserID),
	)
	return updated, nil
}

func (in UpdateSettingsInput) apply(cfg *Config) {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.ShareBasic, in.ShareBasic)
	set(&cfg.ShareContact, in.ShareContact)
	set(&cfg.ShareEducation, in.ShareEducation)
	set(&cfg.ShareCareer, in.ShareCareer)
	set(&cfg.ShareCertificates, in.ShareCertificates)
	set(&cfg.ShareLanguages, in.ShareLanguages)
	set(&cfg.ShareMilitary, in.ShareMilitary)
	set(&cfg.ShareFamily, in.ShareFamily)
	set(&cfg.ShareProfilePhoto, in.ShareProfilePhoto)
	set(&cfg.ShareDocuments, in.ShareDocuments)
	set(&cfg.ShareCertificateFiles, in.ShareCertificateFiles)
	set(&cfg.RealtimeSync, in.RealtimeSync)
}
