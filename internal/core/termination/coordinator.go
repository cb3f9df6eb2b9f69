package termination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/fieldmap"
	"github.com/ogurasousui/hrlink/internal/core/relation"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Coordinator は契約終了時の社員退職・スナップショット保存・共有設定削除を行います。
type Coordinator struct {
	employees         employee.Repository
	configs           sharing.Repository
	employeeRelations relation.Set
	attachments       attachment.Repository
	snapshots         SnapshotRepository
	table             *fieldmap.Table
	retention         time.Duration
	clock             Clock
	logger            *zap.Logger
}

// CoordinatorDeps は Coordinator の依存関係です。
type CoordinatorDeps struct {
	Employees         employee.Repository
	Configs           sharing.Repository
	EmployeeRelations relation.Set
	Attachments       attachment.Repository
	Snapshots         SnapshotRepository
	Table             *fieldmap.Table
	Retention         time.Duration
	Clock             Clock
	Logger            *zap.Logger
}

// NewCoordinator は Coordinator を生成します。
func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	if deps.Table == nil {
		deps.Table = fieldmap.MustDefault()
	}
	if deps.Clock == nil {
		deps.Clock = realClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Coordinator{
		employees:         deps.Employees,
		configs:           deps.Configs,
		employeeRelations: deps.EmployeeRelations,
		attachments:       deps.Attachments,
		snapshots:         deps.Snapshots,
		table:             deps.Table,
		retention:         deps.Retention,
		clock:             deps.Clock,
		logger:            deps.Logger,
	}
}

var _ contract.Terminator = (*Coordinator)(nil)

// Terminate は contract.Terminator の実装です。c.RetentionUntil を設定します。
func (co *Coordinator) Terminate(ctx context.Context, c *contract.Contract, actor contract.Actor) error {
	if !c.Status.IsActive() {
		return &contract.TransitionError{From: c.Status, To: contract.StatusTerminated}
	}
	if c.EmployeeID == nil {
		return fmt.Errorf("termination: contract %s has no employee: %w", c.ID, contract.ErrValidation)
	}

	now := co.clock.Now()
	emp, err := co.employees.FindByID(ctx, *c.EmployeeID)
	if err != nil {
		return fmt.Errorf("termination: load employee: %w", err)
	}
	emp.Resign(now)
	emp.UpdatedAt = now
	if _, err := co.employees.Update(ctx, emp); err != nil {
		return fmt.Errorf("termination: resign employee: %w", err)
	}

	cfg, err := co.configs.FindByContractID(ctx, c.ID)
	if err != nil && !errors.Is(err, sharing.ErrConfigNotFound) {
		return fmt.Errorf("termination: load sharing config: %w", err)
	}

	doc, err := co.document(ctx, c, emp, cfg, now)
	if err != nil {
		return err
	}

	frozen, err := co.attachments.FreezeDeletable(ctx, c.ID, now)
	if err != nil {
		return fmt.Errorf("termination: freeze attachments: %w", err)
	}

	until := now.Add(co.retention)
	snapshot := &Snapshot{
		ID:             uuid.NewString(),
		ContractID:     c.ID,
		EmployeeID:     emp.ID,
		PersonID:       c.PersonID,
		CompanyID:      c.CompanyID,
		Document:       doc,
		RetentionUntil: until,
		CreatedAt:      now,
	}
	if _, err := co.snapshots.Create(ctx, snapshot); err != nil {
		return fmt.Errorf("termination: create snapshot: %w", err)
	}
	c.RetentionUntil = &until

	if err := co.configs.DeleteByContractID(ctx, c.ID); err != nil && !errors.Is(err, sharing.ErrConfigNotFound) {
		return fmt.Errorf("termination: delete sharing config: %w", err)
	}

	co.logger.Info("contract termination prepared",
		zap.String("contract_id", c.ID),
		zap.String("employee_id", emp.ID),
		zap.String("actor_id", actor.UserID),
		zap.Int("frozen_attachments", frozen),
		zap.Time("retention_until", until),
	)
	return nil
}

// document は共有設定で許可されていた範囲の社員側データを集めます。
func (co *Coordinator) document(ctx context.Context, c *contract.Contract, emp *employee.Employee, cfg *sharing.Config, now time.Time) (Document, error) {
	doc := Document{
		EmployeeNumber: emp.EmployeeNumber,
		Fields:         map[string]string{},
		Relations:      map[relation.Kind]any{},
		Attachments:    []*attachment.Attachment{},
		TerminatedAt:   now,
	}

	for _, f := range co.table.Allowed(cfg) {
		if v := f.Employee.Get(emp); v != "" {
			doc.Fields[f.EmployeeName] = v
		}
	}

	rows, err := co.employeeRelations.Snapshot(ctx, emp.ID)
	if err != nil {
		return Document{}, fmt.Errorf("termination: snapshot relations: %w", err)
	}
	for _, kind := range cfg.Relations() {
		doc.Relations[kind] = rows[kind]
	}

	for _, category := range cfg.Categories() {
		synced, err := co.attachments.ListSynced(ctx, c.ID, category)
		if err != nil {
			return Document{}, fmt.Errorf("termination: list attachments: %w", err)
		}
		doc.Attachments = append(doc.Attachments, synced...)
	}
	return doc, nil
}
