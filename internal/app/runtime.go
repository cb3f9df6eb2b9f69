package app

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/adapters/events/logsink"
	"github.com/ogurasousui/hrlink/internal/adapters/events/rabbitmq"
	"github.com/ogurasousui/hrlink/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hrlink/internal/adapters/storage/filesystem"
	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/company"
	"github.com/ogurasousui/hrlink/internal/core/event"
	"github.com/ogurasousui/hrlink/internal/platform/config"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
	"github.com/ogurasousui/hrlink/internal/platform/metrics"
)

// Runtime は App と、それが保持する外部リソースです。
type Runtime struct {
	*App
	pool      *pgxpool.Pool
	publisher event.Publisher
	logger    *zap.Logger
}

// NewPostgresStores は pool を使う Stores を返します。
func NewPostgresStores(pool *pgxpool.Pool, storage attachment.FileStorage, txOpts ...pgdb.TxOption) Stores {
	return Stores{
		Contracts:         postgres.NewContractRepository(pool),
		Profiles:          postgres.NewProfileRepository(pool),
		Employees:         postgres.NewEmployeeRepository(pool),
		Companies:         postgres.NewCompanyRepository(pool),
		Sequences:         postgres.NewSequenceRepository(pool),
		Configs:           postgres.NewSharingRepository(pool),
		PersonRelations:   postgres.NewPersonRelations(pool),
		EmployeeRelations: postgres.NewEmployeeRelations(pool),
		Attachments:       postgres.NewAttachmentRepository(pool),
		Storage:           storage,
		Logs:              postgres.NewSyncLogRepository(pool),
		Snapshots:         postgres.NewSnapshotRepository(pool),
		Tx:                pgdb.NewTransactionManager(pool, txOpts...),
	}
}

// NewPublisher は events.amqp_url が設定されていれば RabbitMQ、そうでなければログ出力の Publisher を返します。
func NewPublisher(cfg config.EventsConfig, logger *zap.Logger) (event.Publisher, error) {
	if cfg.AMQPURL == "" {
		return logsink.New(logger), nil
	}
	p, err := rabbitmq.Dial(cfg.AMQPURL, cfg.Exchange, cfg.RoutingKeyPrefix)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NumberingPolicy は設定ファイルの既定採番ルールを返します。
func NumberingPolicy(cfg config.NumberingConfig) company.NumberingPolicy {
	includeYear := true
	if cfg.IncludeYear != nil {
		includeYear = *cfg.IncludeYear
	}
	return company.NumberingPolicy{Prefix: cfg.Prefix, Digits: cfg.Digits, IncludeYear: includeYear}
}

// Open は設定に従ってデータベース・ファイル保存先・イベント送信先へ接続し、App を組み立てます。
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgdb.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: database: %w", err)
	}

	store, err := filesystem.New(cfg.Storage.RootDir)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: storage: %w", err)
	}

	publisher, err := NewPublisher(cfg.Events, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: events: %w", err)
	}

	opts := Options{
		Retention: cfg.Retention.Period,
		Numbering: NumberingPolicy(cfg.Numbering),
		Publisher: publisher,
		Logger:    logger,
	}
	if reg != nil {
		collector := metrics.New(reg)
		opts.ContractObserver = collector
		opts.SyncObserver = collector
	}

	txOpts := []pgdb.TxOption{pgdb.WithTxLogger(logger.Named("tx"))}
	if cfg.Database.TxMaxRetries > 0 {
		txOpts = append(txOpts, pgdb.WithMaxRetries(cfg.Database.TxMaxRetries))
	}

	a, err := New(NewPostgresStores(pool, store, txOpts...), opts)
	if err != nil {
		closePublisher(publisher, logger)
		pool.Close()
		return nil, err
	}

	return &Runtime{App: a, pool: pool, publisher: publisher, logger: logger}, nil
}

// Close は保持している接続を閉じます。
func (r *Runtime) Close() {
	closePublisher(r.publisher, r.logger)
	r.pool.Close()
}

func closePublisher(p event.Publisher, logger *zap.Logger) {
	c, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("failed to close event publisher", zap.Error(err))
	}
}
