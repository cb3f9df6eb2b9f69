package syncer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/fieldmap"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/relation"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
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

// Scope は 1 回の同期で扱う対象です。
type Scope struct {
	Fields      []fieldmap.Entry
	Relations   []relation.Kind
	Attachments []attachment.Category
}

// Empty は対象が無いかどうかを返します。
func (s Scope) Empty() bool {
	return len(s.Fields) == 0 && len(s.Relations) == 0 && len(s.Attachments) == 0
}

// Plan は Engine.Run の入力です。
type Plan struct {
	Contract  *contract.Contract
	Profile   *profile.Profile
	Employee  *employee.Employee
	Direction synclog.Direction
	SyncType  synclog.SyncType
	ActorID   string
	Scope
}

// Change は 1 項目の変更前後の値です。
type Change struct {
	Old string
	New string
}

// SkippedFile は複製できずに飛ばした添付ファイルです。
type SkippedFile struct {
	AttachmentID string
	FileName     string
	Category     attachment.Category
	Err          error
}

// Result は同期の結果です。
type Result struct {
	Success           bool
	SyncedFields      []string
	Changes           map[string]Change
	Relations         map[relation.Kind]int
	CopiedAttachments int
	Skipped           []SkippedFile
	LogIDs            []string
	// StaleFiles はコミット後に削除する旧同期ファイルです。
	StaleFiles []string
}

func newResult() *Result {
	return &Result{
		SyncedFields: []string{},
		Changes:      map[string]Change{},
		Relations:    map[relation.Kind]int{},
		LogIDs:       []string{},
	}
}

// Engine は基本項目・関連データ・添付ファイルを同期します。呼び出し側のトランザクション内で実行されます。
type Engine struct {
	table             *fieldmap.Table
	profiles          profile.Repository
	employees         employee.Repository
	personRelations   relation.Set
	employeeRelations relation.Set
	attachments       attachment.Repository
	storage           attachment.FileStorage
	logs              synclog.Repository
	clock             Clock
	logger            *zap.Logger
}

// EngineDeps は Engine の依存関係です。
type EngineDeps struct {
	Table             *fieldmap.Table
	Profiles          profile.Repository
	Employees         employee.Repository
	PersonRelations   relation.Set
	EmployeeRelations relation.Set
	Attachments       attachment.Repository
	Storage           attachment.FileStorage
	Logs              synclog.Repository
	Clock             Clock
	Logger            *zap.Logger
}

// NewEngine は Engine を生成します。
func NewEngine(deps EngineDeps) *Engine {
	if deps.Table == nil {
		deps.Table = fieldmap.MustDefault()
	}
	if deps.Clock == nil {
		deps.Clock = realClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Engine{
		table:             deps.Table,
		profiles:          deps.Profiles,
		employees:         deps.Employees,
		personRelations:   deps.PersonRelations,
		employeeRelations: deps.EmployeeRelations,
		attachments:       deps.Attachments,
		storage:           deps.Storage,
		logs:              deps.Logs,
		clock:             deps.Clock,
		logger:            deps.Logger,
	}
}

// Table は項目対応表を返します。
func (e *Engine) Table() *fieldmap.Table {
	return e.table
}

// Scope は共有設定で許可された全対象を返します。
func (e *Engine) Scope(cfg *sharing.Config) Scope {
	return Scope{
		Fields:      e.table.Allowed(cfg),
		Relations:   cfg.Relations(),
		Attachments: cfg.Categories(),
	}
}

// Run は plan に従って同期を行います。関連データと添付ファイルは個人から会社の方向のみです。
func (e *Engine) Run(ctx context.Context, plan Plan) (*Result, error) {
	if plan.Contract == nil || plan.Profile == nil || plan.Employee == nil {
		return nil, fmt.Errorf("syncer: contract, profile and employee are required: %w", contract.ErrValidation)
	}
	if plan.Direction == synclog.DirectionCompanyToPerson && (len(plan.Relations) > 0 || len(plan.Attachments) > 0) {
		return nil, fmt.Errorf("syncer: collections sync only from person to company: %w", contract.ErrValidation)
	}

	r := &run{engine: e, plan: plan, result: newResult(), now: e.clock.Now()}

	dirty, err := r.syncFields()
	if err != nil {
		return nil, err
	}
	if err := r.syncRelations(ctx); err != nil {
		return nil, err
	}
	photoChanged, err := r.syncAttachments(ctx)
	if err != nil {
		return nil, err
	}

	if dirty || photoChanged {
		if err := r.saveDestination(ctx); err != nil {
			return nil, err
		}
	}

	if len(r.entries) > 0 {
		if err := e.logs.Append(ctx, r.entries...); err != nil {
			return nil, fmt.Errorf("syncer: append sync log: %w", err)
		}
	}

	r.result.Success = true
	return r.result, nil
}

type run struct {
	engine  *Engine
	plan    Plan
	result  *Result
	entries []*synclog.Entry
	now     time.Time
}

func (r *run) log(entityType string, oldValue, newValue string) {
	entry := &synclog.Entry{
		ID:         uuid.NewString(),
		ContractID: r.plan.Contract.ID,
		SyncType:   r.plan.SyncType,
		EntityType: entityType,
		Direction:  r.plan.Direction,
		OldValue:   optional(oldValue),
		NewValue:   optional(newValue),
		ActorID:    r.plan.ActorID,
		CreatedAt:  r.now,
	}
	r.entries = append(r.entries, entry)
	r.result.LogIDs = append(r.result.LogIDs, entry.ID)
}

func (r *run) syncFields() (bool, error) {
	p, emp := r.plan.Profile, r.plan.Employee
	dirty := false

	for _, f := range r.plan.Fields {
		var (
			name     string
			src, dst string
			write    func(string) error
		)
		switch r.plan.Direction {
		case synclog.DirectionPersonToCompany:
			name = f.PersonName
			src, dst = f.Person.Get(p), f.Employee.Get(emp)
			write = func(v string) error { return f.Employee.Set(emp, v) }
		case synclog.DirectionCompanyToPerson:
			if !f.Bidirectional {
				return false, fmt.Errorf("field %s cannot sync from company to person: %w", f.EmployeeName, contract.ErrValidation)
			}
			name = f.EmployeeName
			src, dst = f.Employee.Get(emp), f.Person.Get(p)
			write = func(v string) error { return f.Person.Set(p, v) }
		default:
			return false, fmt.Errorf("direction %q: %w", r.plan.Direction, contract.ErrValidation)
		}

		if src == dst {
			continue
		}
		if err := write(src); err != nil {
			return false, fmt.Errorf("field %s: %w", name, err)
		}

		dirty = true
		r.result.SyncedFields = append(r.result.SyncedFields, name)
		r.result.Changes[name] = Change{Old: dst, New: src}
		r.log(name, dst, src)
	}
	return dirty, nil
}

func (r *run) syncRelations(ctx context.Context) error {
	e := r.engine
	for _, kind := range r.plan.Relations {
		res, err := relation.Copy(ctx, kind, e.personRelations, e.employeeRelations, r.plan.Profile.PersonID, r.plan.Employee.ID)
		if err != nil {
			return fmt.Errorf("syncer: %w", err)
		}
		r.result.Relations[kind] = res.Inserted
		r.log(string(kind), strconv.Itoa(res.Previous), strconv.Itoa(res.Inserted))
	}
	return nil
}

// syncAttachments は分類ごとに旧同期ファイルを外し、個人側のファイルを複製します。
// プロフィール写真を複製した場合は true を返します。
func (r *run) syncAttachments(ctx context.Context) (bool, error) {
	e := r.engine
	photoChanged := false
	c := r.plan.Contract

	for _, category := range r.plan.Attachments {
		removed, err := e.attachments.DeleteSynced(ctx, c.ID, category)
		if err != nil {
			return false, fmt.Errorf("syncer: delete synced %s: %w", category, err)
		}
		for _, old := range removed {
			r.result.StaleFiles = append(r.result.StaleFiles, old.StoragePath)
		}

		sources, err := e.attachments.ListByOwner(ctx, attachment.OwnerTypeProfile, r.plan.Profile.PersonID, category)
		if err != nil {
			return false, fmt.Errorf("syncer: list %s: %w", category, err)
		}

		copied := 0
		for _, src := range sources {
			newPath, err := e.storage.Copy(ctx, src.StoragePath, attachment.OwnerTypeEmployee, r.plan.Employee.ID, category)
			if err != nil {
				skipped := SkippedFile{
					AttachmentID: src.ID,
					FileName:     src.FileName,
					Category:     category,
					Err:          fmt.Errorf("%w: %v", ErrFileCopyFailed, err),
				}
				r.result.Skipped = append(r.result.Skipped, skipped)
				e.logger.Warn("attachment copy skipped",
					zap.String("contract_id", c.ID),
					zap.String("attachment_id", src.ID),
					zap.String("category", string(category)),
					zap.Error(err),
				)
				continue
			}

			sourceID := src.ID
			contractID := c.ID
			row := &attachment.Attachment{
				ID:                     uuid.NewString(),
				OwnerType:              attachment.OwnerTypeEmployee,
				OwnerID:                r.plan.Employee.ID,
				Category:               category,
				FileName:               src.FileName,
				StoragePath:            newPath,
				MimeType:               src.MimeType,
				SizeBytes:              src.SizeBytes,
				SourceType:             attachment.SourceSynced,
				SourceContractID:       &contractID,
				SourceAttachmentID:     &sourceID,
				DeletableOnTermination: true,
				CreatedAt:              r.now,
			}
			if _, err := e.attachments.Create(ctx, row); err != nil {
				return false, fmt.Errorf("syncer: create attachment: %w", err)
			}
			copied++

			if category == attachment.CategoryProfilePhoto {
				r.plan.Employee.PhotoPath = newPath
				photoChanged = true
			}
		}

		if category == attachment.CategoryProfilePhoto && copied == 0 && len(removed) > 0 {
			r.plan.Employee.PhotoPath = ""
			photoChanged = true
		}

		r.result.CopiedAttachments += copied
		r.log(string(category), strconv.Itoa(len(removed)), strconv.Itoa(copied))
	}
	return photoChanged, nil
}

func (r *run) saveDestination(ctx context.Context) error {
	switch r.plan.Direction {
	case synclog.DirectionCompanyToPerson:
		r.plan.Profile.UpdatedAt = r.now
		if _, err := r.engine.profiles.Update(ctx, r.plan.Profile); err != nil {
			return fmt.Errorf("syncer: update profile: %w", err)
		}
	default:
		r.plan.Employee.UpdatedAt = r.now
		if _, err := r.engine.employees.Update(ctx, r.plan.Employee); err != nil {
			return fmt.Errorf("syncer: update employee: %w", err)
		}
	}
	return nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
