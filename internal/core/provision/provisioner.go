package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
	"github.com/ogurasousui/hrlink/internal/core/syncer"
	"github.com/ogurasousui/hrlink/internal/core/synclog"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// NumberGenerator は会社ごとの社員番号を払い出します。
type NumberGenerator interface {
	Next(ctx context.Context, companyID string) (string, error)
}

// InitialSyncer は承認直後の初回同期を行います。
type InitialSyncer interface {
	Scope(cfg *sharing.Config) syncer.Scope
	Run(ctx context.Context, plan syncer.Plan) (*syncer.Result, error)
}

// Provisioner は承認時に社員レコード・共有設定を用意し、初回同期を実行します。
type Provisioner struct {
	profiles  profile.Repository
	employees employee.Repository
	configs   sharing.Repository
	numbers   NumberGenerator
	syncer    InitialSyncer
	clock     Clock
	logger    *zap.Logger
}

// NewProvisioner は Provisioner を生成します。
func NewProvisioner(profiles profile.Repository, employees employee.Repository, configs sharing.Repository, numbers NumberGenerator, initial InitialSyncer, clock Clock, logger *zap.Logger) *Provisioner {
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{
		profiles:  profiles,
		employees: employees,
		configs:   configs,
		numbers:   numbers,
		syncer:    initial,
		clock:     clock,
		logger:    logger,
	}
}

var _ contract.Provisioner = (*Provisioner)(nil)

// Provision は contract.Provisioner の実装です。呼び出し側のトランザクション内で実行されます。
func (p *Provisioner) Provision(ctx context.Context, c *contract.Contract, actor contract.Actor) (*contract.Provisioning, error) {
	prof, err := p.profiles.FindByPersonID(ctx, c.PersonID)
	if err != nil {
		return nil, fmt.Errorf("provision: load profile: %w", err)
	}

	now := p.clock.Now()
	emp, reactivated, err := p.reactivateLinked(ctx, prof, c)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		emp, err = p.createEmployee(ctx, c, now)
		if err != nil {
			return nil, err
		}
	}

	cfg := sharing.Default(c.ID, now)
	if _, err := p.configs.Create(ctx, cfg); err != nil {
		return nil, fmt.Errorf("provision: create sharing config: %w", err)
	}

	employeeID := emp.ID
	linked := c.Clone()
	linked.EmployeeID = &employeeID
	res, err := p.syncer.Run(ctx, syncer.Plan{
		Contract:  linked,
		Profile:   prof,
		Employee:  emp,
		Direction: synclog.DirectionPersonToCompany,
		SyncType:  synclog.SyncTypeInitial,
		ActorID:   actor.UserID,
		Scope:     p.syncer.Scope(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("provision: initial sync: %w", err)
	}

	p.logger.Info("employee provisioned",
		zap.String("contract_id", c.ID),
		zap.String("employee_id", emp.ID),
		zap.String("employee_number", emp.EmployeeNumber),
		zap.Bool("reactivated", reactivated),
		zap.Int("synced_fields", len(res.SyncedFields)),
		zap.Int("skipped_files", len(res.Skipped)),
	)

	return &contract.Provisioning{EmployeeID: emp.ID, EmployeeNumber: emp.EmployeeNumber}, nil
}

// reactivateLinked は会社発行のサブアカウントに紐づく社員を再び在籍状態にします。対象が無ければ nil を返します。
func (p *Provisioner) reactivateLinked(ctx context.Context, prof *profile.Profile, c *contract.Contract) (*employee.Employee, bool, error) {
	linkedID, ok := prof.LinkedEmployeeFor(c.CompanyID)
	if !ok {
		return nil, false, nil
	}

	emp, err := p.employees.FindByID(ctx, linkedID)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("provision: load linked employee: %w", err)
	}
	if emp.CompanyID != c.CompanyID || emp.PersonID != c.PersonID {
		return nil, false, nil
	}

	emp.Reactivate(c.ID)
	if c.Position != "" {
		emp.Position = c.Position
	}
	if c.Department != "" {
		emp.Department = c.Department
	}
	emp.UpdatedAt = p.clock.Now()
	updated, err := p.employees.Update(ctx, emp)
	if err != nil {
		return nil, false, fmt.Errorf("provision: reactivate employee: %w", err)
	}
	return updated, true, nil
}

// createEmployee は常に新しい社員レコードを作成します。過去の退職済みレコードは変更しません。
func (p *Provisioner) createEmployee(ctx context.Context, c *contract.Contract, now time.Time) (*employee.Employee, error) {
	number, err := p.numbers.Next(ctx, c.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("provision: issue employee number: %w", err)
	}

	hired := employee.Today(now)
	contractID := c.ID
	emp := &employee.Employee{
		ID:             uuid.NewString(),
		CompanyID:      c.CompanyID,
		PersonID:       c.PersonID,
		ContractID:     &contractID,
		EmployeeNumber: number,
		Status:         employee.StatusActive,
		Position:       c.Position,
		Department:     c.Department,
		HiredAt:        &hired,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := p.employees.Create(ctx, emp)
	if err != nil {
		return nil, fmt.Errorf("provision: create employee: %w", err)
	}
	return created, nil
}
