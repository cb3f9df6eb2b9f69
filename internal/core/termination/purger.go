package termination

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
)

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

const purgeBatchSize = 100

// Purger は保持期限を過ぎた終了済み契約の保管データを削除します。
type Purger struct {
	contracts   ContractRepository
	snapshots   SnapshotRepository
	attachments attachment.Repository
	storage     attachment.FileStorage
	tx          TransactionManager
	clock       Clock
	logger      *zap.Logger
}

// NewPurger は Purger を生成します。
func NewPurger(contracts ContractRepository, snapshots SnapshotRepository, attachments attachment.Repository, storage attachment.FileStorage, tx TransactionManager, clock Clock, logger *zap.Logger) *Purger {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Purger{
		contracts:   contracts,
		snapshots:   snapshots,
		attachments: attachments,
		storage:     storage,
		tx:          tx,
		clock:       clock,
		logger:      logger,
	}
}

// PurgeExpired は保持期限を過ぎた契約ごとにスナップショットと凍結済み添付を削除し、処理件数を返します。
func (p *Purger) PurgeExpired(ctx context.Context) (int, error) {
	purged := 0
	for {
		now := p.clock.Now()
		due, err := p.contracts.ListRetentionElapsed(ctx, now, purgeBatchSize)
		if err != nil {
			return purged, err
		}

		progressed := 0
		for _, c := range due {
			ok, err := p.purgeOne(ctx, c.ID)
			if err != nil {
				return purged, err
			}
			if ok {
				purged++
				progressed++
			}
		}
		if len(due) < purgeBatchSize || progressed == 0 {
			return purged, nil
		}
	}
}

func (p *Purger) purgeOne(ctx context.Context, contractID string) (bool, error) {
	var (
		files []string
		done  bool
	)
	err := p.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		files = files[:0]
		c, err := p.contracts.FindByIDForUpdate(txCtx, contractID)
		if err != nil {
			return err
		}
		now := p.clock.Now()
		if c.RetentionPurgedAt != nil || c.RetentionUntil == nil || c.RetentionUntil.After(now) {
			return nil
		}

		if err := p.snapshots.DeleteByContractID(txCtx, contractID); err != nil && !errors.Is(err, ErrSnapshotNotFound) {
			return fmt.Errorf("termination: delete snapshot: %w", err)
		}
		removed, err := p.attachments.DeleteFrozen(txCtx, contractID)
		if err != nil {
			return fmt.Errorf("termination: delete frozen attachments: %w", err)
		}
		for _, a := range removed {
			files = append(files, a.StoragePath)
		}

		c.RetentionPurgedAt = &now
		c.UpdatedAt = now
		if _, err := p.contracts.Update(txCtx, c); err != nil {
			return err
		}
		done = true
		return nil
	})
	if err != nil || !done {
		return false, err
	}

	for _, path := range files {
		if err := p.storage.Remove(ctx, path); err != nil {
			p.logger.Warn("failed to remove retained attachment file", zap.String("path", path), zap.Error(err))
		}
	}
	p.logger.Info("retention purged", zap.String("contract_id", contractID), zap.Int("files", len(files)))
	return true, nil
}
