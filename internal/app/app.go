// Package app は cmd/server と cmd/housekeeper が共有するコンポジションルートです。
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/adapters/grpc/handler"
	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/company"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/event"
	"github.com/ogurasousui/hrlink/internal/core/fieldmap"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/provision"
	"github.com/ogurasousui/hrlink/internal/core/relation"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
	"github.com/ogurasousui/hrlink/internal/core/synclog"
	"github.com/ogurasousui/hrlink/internal/core/syncer"
	"github.com/ogurasousui/hrlink/internal/core/termination"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Stores は永続化層の実装一式です。
type Stores struct {
	Contracts         contract.Repository
	Profiles          profile.Repository
	Employees         employee.Repository
	Companies         company.Repository
	Sequences         company.SequenceRepository
	Configs           sharing.Repository
	PersonRelations   relation.Set
	EmployeeRelations relation.Set
	Attachments       attachment.Repository
	Storage           attachment.FileStorage
	Logs              synclog.Repository
	Snapshots         termination.SnapshotRepository
	Tx                TransactionManager
}

// Options はサービスの振る舞いに関する設定です。
type Options struct {
	Retention        time.Duration
	Numbering        company.NumberingPolicy
	Publisher        event.Publisher
	ContractObserver contract.Observer
	SyncObserver     syncer.Observer
	Clock            Clock
	Logger           *zap.Logger
}

// App は組み立て済みのユースケースです。
type App struct {
	Contracts *contract.Service
	Sync      *syncer.Service
	Sharing   *sharing.Service
	Profiles  *profile.Service
	Purger    *termination.Purger
	Handler   *handler.ContractGrpcHandler
}

// New は stores を使って全ユースケースを組み立てます。
func New(stores Stores, opts Options) (*App, error) {
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Publisher == nil {
		opts.Publisher = event.NopPublisher{}
	}
	if opts.Retention <= 0 {
		return nil, fmt.Errorf("app: retention period must be positive")
	}

	table, err := fieldmap.Default()
	if err != nil {
		return nil, fmt.Errorf("app: build field table: %w", err)
	}

	numbers, err := company.NewNumberGenerator(stores.Companies, stores.Sequences, opts.Numbering, opts.Clock)
	if err != nil {
		return nil, fmt.Errorf("app: numbering policy: %w", err)
	}

	engine := syncer.NewEngine(syncer.EngineDeps{
		Table:             table,
		Profiles:          stores.Profiles,
		Employees:         stores.Employees,
		PersonRelations:   stores.PersonRelations,
		EmployeeRelations: stores.EmployeeRelations,
		Attachments:       stores.Attachments,
		Storage:           stores.Storage,
		Logs:              stores.Logs,
		Clock:             opts.Clock,
		Logger:            opts.Logger.Named("sync"),
	})

	provisioner := provision.NewProvisioner(stores.Profiles, stores.Employees, stores.Configs, numbers, engine, opts.Clock, opts.Logger.Named("provision"))

	coordinator := termination.NewCoordinator(termination.CoordinatorDeps{
		Employees:         stores.Employees,
		Configs:           stores.Configs,
		EmployeeRelations: stores.EmployeeRelations,
		Attachments:       stores.Attachments,
		Snapshots:         stores.Snapshots,
		Table:             table,
		Retention:         opts.Retention,
		Clock:             opts.Clock,
		Logger:            opts.Logger.Named("termination"),
	})

	contracts := contract.NewService(stores.Contracts, provisioner, coordinator, opts.Clock, stores.Tx,
		contract.WithLogger(opts.Logger.Named("contract")),
		contract.WithPublisher(opts.Publisher),
		contract.WithObserver(opts.ContractObserver),
	)

	syncSvc := syncer.NewService(syncer.ServiceDeps{
		Engine:    engine,
		Contracts: stores.Contracts,
		Configs:   stores.Configs,
		Profiles:  stores.Profiles,
		Employees: stores.Employees,
		Tx:        stores.Tx,
		Clock:     opts.Clock,
		Logger:    opts.Logger.Named("sync"),
		Publisher: opts.Publisher,
		Observer:  opts.SyncObserver,
	})

	sharingSvc := sharing.NewService(stores.Configs, stores.Contracts, opts.Clock, stores.Tx, opts.Logger.Named("sharing"))
	profiles := profile.NewService(stores.Profiles, opts.Clock, stores.Tx, syncSvc, opts.Logger.Named("profile"))
	purger := termination.NewPurger(stores.Contracts, stores.Snapshots, stores.Attachments, stores.Storage, stores.Tx, opts.Clock, opts.Logger.Named("purger"))

	return &App{
		Contracts: contracts,
		Sync:      syncSvc,
		Sharing:   sharingSvc,
		Profiles:  profiles,
		Purger:    purger,
		Handler:   handler.NewContractGrpcHandler(contracts, syncSvc, sharingSvc, profiles),
	}, nil
}

// Housekeep は放置された申請を失効させ、保持期限を過ぎたデータを削除します。
func (a *App) Housekeep(ctx context.Context, requestTTL time.Duration) (expired, purged int, err error) {
	expired, err = a.Contracts.ExpireStaleRequests(ctx, requestTTL)
	if err != nil {
		return expired, 0, fmt.Errorf("expire stale requests: %w", err)
	}
	purged, err = a.Purger.PurgeExpired(ctx)
	if err != nil {
		return expired, purged, fmt.Errorf("purge expired retention: %w", err)
	}
	return expired, purged, nil
}
