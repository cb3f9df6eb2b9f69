package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/event"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/relation"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
	"github.com/ogurasousui/hrlink/internal/core/synclog"
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

// ContractRepository は同期に必要な契約の参照です。
// 同期中の契約は行ロックで読み、並行する解約と直列化させます。
type ContractRepository interface {
	FindByIDForUpdate(ctx context.Context, id string) (*contract.Contract, error)
	ListActiveByPerson(ctx context.Context, personID string) ([]*contract.Contract, error)
}

// Observer は同期の実行結果を受け取ります。
type Observer interface {
	ObserveSync(direction synclog.Direction, syncType synclog.SyncType, outcome string, r *Result, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveSync(synclog.Direction, synclog.SyncType, string, *Result, time.Duration) {}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Service は同期要求の入口です。状態遷移とは独立に、その時点の共有設定で同期します。
type Service struct {
	engine    *Engine
	contracts ContractRepository
	configs   sharing.Repository
	profiles  profile.Repository
	employees employee.Repository
	tx        TransactionManager
	clock     Clock
	logger    *zap.Logger
	publisher event.Publisher
	observer  Observer
}

// ServiceDeps は Service の依存関係です。
type ServiceDeps struct {
	Engine    *Engine
	Contracts ContractRepository
	Configs   sharing.Repository
	Profiles  profile.Repository
	Employees employee.Repository
	Tx        TransactionManager
	Clock     Clock
	Logger    *zap.Logger
	Publisher event.Publisher
	Observer  Observer
}

// NewService は Service を生成します。
func NewService(deps ServiceDeps) *Service {
	s := &Service{
		engine:    deps.Engine,
		contracts: deps.Contracts,
		configs:   deps.Configs,
		profiles:  deps.Profiles,
		employees: deps.Employees,
		tx:        deps.Tx,
		clock:     deps.Clock,
		logger:    deps.Logger,
		publisher: deps.Publisher,
		observer:  deps.Observer,
	}
	if s.tx == nil {
		s.tx = noopTransactionManager{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.publisher == nil {
		s.publisher = event.NopPublisher{}
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s
}

// SyncPersonToCompany は個人のプロフィールを社員レコードへ同期します。names が空の場合は共有設定で許可された全対象です。
func (s *Service) SyncPersonToCompany(ctx context.Context, actor contract.Actor, contractID string, names []string) (*Result, error) {
	return s.syncContract(ctx, actor, contractID, synclog.DirectionPersonToCompany, synclog.SyncTypeManual, func(cfg *sharing.Config) (Scope, error) {
		return s.personScope(cfg, names)
	})
}

// SyncCompanyToPerson は社員レコードの双方向項目をプロフィールへ同期します。names は必須です。
func (s *Service) SyncCompanyToPerson(ctx context.Context, actor contract.Actor, contractID string, names []string) (*Result, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("fields: %w", contract.ErrValidation)
	}
	return s.syncContract(ctx, actor, contractID, synclog.DirectionCompanyToPerson, synclog.SyncTypeManual, func(cfg *sharing.Config) (Scope, error) {
		return s.companyScope(cfg, names)
	})
}

// AutoSync はプロフィール更新後に、リアルタイム同期が有効な全契約へ個人側の内容を反映します。
func (s *Service) AutoSync(ctx context.Context, personID string) (map[string]*Result, error) {
	if strings.TrimSpace(personID) == "" {
		return nil, fmt.Errorf("person_id: %w", contract.ErrValidation)
	}

	active, err := s.contracts.ListActiveByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	actor := contract.Actor{UserID: personID, AccountType: contract.AccountTypePersonal}
	results := make(map[string]*Result, len(active))
	var errs []error
	for _, c := range active {
		res, err := s.syncContract(ctx, actor, c.ID, synclog.DirectionPersonToCompany, synclog.SyncTypeAuto, func(cfg *sharing.Config) (Scope, error) {
			if !cfg.RealtimeSync {
				return Scope{}, errSkipSync
			}
			return s.engine.Scope(cfg), nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("contract %s: %w", c.ID, err))
			continue
		}
		if res != nil {
			results[c.ID] = res
		}
	}
	return results, errors.Join(errs...)
}

// ProfileChanged は profile.ChangeListener の実装です。
func (s *Service) ProfileChanged(ctx context.Context, personID string) error {
	_, err := s.AutoSync(ctx, personID)
	return err
}

type scopeFunc func(cfg *sharing.Config) (Scope, error)

// errSkipSync は同期対象外の契約であることを示します。
var errSkipSync = errors.New("syncer: skip")

func (s *Service) syncContract(ctx context.Context, actor contract.Actor, contractID string, direction synclog.Direction, syncType synclog.SyncType, resolve scopeFunc) (*Result, error) {
	if _, err := uuid.Parse(strings.TrimSpace(contractID)); err != nil {
		return nil, fmt.Errorf("contract_id: %w", contract.ErrValidation)
	}

	started := s.clock.Now()
	var (
		c      *contract.Contract
		result *Result
	)
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		var err error
		c, err = s.contracts.FindByIDForUpdate(txCtx, contractID)
		if err != nil {
			return err
		}
		if _, ok := c.PartyOf(actor); !ok {
			return contract.ErrPermissionDenied
		}
		if !c.Status.IsActive() || c.EmployeeID == nil {
			return contract.ErrContractNotActive
		}

		cfg, err := s.configs.FindByContractID(txCtx, c.ID)
		if err != nil {
			return err
		}
		scope, err := resolve(cfg)
		if err != nil {
			return err
		}
		if scope.Empty() {
			result = newResult()
			result.Success = true
			return nil
		}

		p, err := s.profiles.FindByPersonID(txCtx, c.PersonID)
		if err != nil {
			return err
		}
		emp, err := s.employees.FindByID(txCtx, *c.EmployeeID)
		if err != nil {
			return err
		}

		result, err = s.engine.Run(txCtx, Plan{
			Contract:  c,
			Profile:   p,
			Employee:  emp,
			Direction: direction,
			SyncType:  syncType,
			ActorID:   actor.UserID,
			Scope:     scope,
		})
		return err
	})
	elapsed := s.clock.Now().Sub(started)

	if errors.Is(err, errSkipSync) {
		return nil, nil
	}
	if err != nil {
		s.observer.ObserveSync(direction, syncType, OutcomeFailure, nil, elapsed)
		s.logger.Error("sync aborted",
			zap.String("contract_id", contractID),
			zap.String("direction", string(direction)),
			zap.String("sync_type", string(syncType)),
			zap.Error(err),
		)
		if c != nil {
			ev := event.New(event.TypeSyncFailed, c.ID, c.PersonID, c.CompanyID, actor.UserID, s.clock.Now())
			ev.Attributes["direction"] = string(direction)
			ev.Attributes["sync_type"] = string(syncType)
			s.publish(ctx, ev)
		}
		return nil, err
	}
	s.removeStaleFiles(ctx, result.StaleFiles)
	s.observer.ObserveSync(direction, syncType, OutcomeSuccess, result, elapsed)
	s.logger.Info("sync committed",
		zap.String("contract_id", c.ID),
		zap.String("direction", string(direction)),
		zap.String("sync_type", string(syncType)),
		zap.Strings("synced_fields", result.SyncedFields),
		zap.Int("skipped_files", len(result.Skipped)),
	)

	ev := event.New(event.TypeSyncCompleted, c.ID, c.PersonID, c.CompanyID, actor.UserID, s.clock.Now())
	ev.Attributes["direction"] = string(direction)
	ev.Attributes["sync_type"] = string(syncType)
	ev.Attributes["synced_fields"] = strings.Join(result.SyncedFields, ",")
	ev.Attributes["copied_attachments"] = strconv.Itoa(result.CopiedAttachments)
	ev.Attributes["skipped_attachments"] = strconv.Itoa(len(result.Skipped))
	s.publish(ctx, ev)

	return result, nil
}

// personScope は要求された名称を項目・関連データ・添付分類に振り分けます。
func (s *Service) personScope(cfg *sharing.Config, names []string) (Scope, error) {
	if len(names) == 0 {
		return s.engine.Scope(cfg), nil
	}

	allowed := allowedFields(s.engine.Scope(cfg))
	var scope Scope
	seen := map[string]bool{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		if entry, ok := s.engine.Table().Lookup(name); ok {
			if !allowed[entry.PersonName] {
				return Scope{}, fmt.Errorf("field %s: %w", name, contract.ErrPermissionDenied)
			}
			scope.Fields = append(scope.Fields, entry)
			continue
		}
		if kind, ok := relation.ParseKind(name); ok {
			if !cfg.AllowsRelation(kind) {
				return Scope{}, fmt.Errorf("relation %s: %w", name, contract.ErrPermissionDenied)
			}
			scope.Relations = append(scope.Relations, kind)
			continue
		}
		if category, ok := attachment.ParseCategory(name); ok {
			if !cfg.AllowsCategory(category) {
				return Scope{}, fmt.Errorf("attachment %s: %w", name, contract.ErrPermissionDenied)
			}
			scope.Attachments = append(scope.Attachments, category)
			continue
		}
		return Scope{}, fmt.Errorf("unknown field %s: %w", name, contract.ErrValidation)
	}
	if scope.Empty() {
		return Scope{}, fmt.Errorf("fields: %w", contract.ErrValidation)
	}
	return scope, nil
}

// companyScope は会社から個人への同期対象を検証します。双方向項目のみ許可します。
func (s *Service) companyScope(cfg *sharing.Config, names []string) (Scope, error) {
	allowed := allowedFields(s.engine.Scope(cfg))
	var scope Scope
	seen := map[string]bool{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		entry, ok := s.engine.Table().Lookup(name)
		if !ok {
			return Scope{}, fmt.Errorf("unknown field %s: %w", name, contract.ErrValidation)
		}
		if !entry.Bidirectional {
			return Scope{}, fmt.Errorf("field %s cannot sync from company to person: %w", name, contract.ErrValidation)
		}
		if !allowed[entry.PersonName] {
			return Scope{}, fmt.Errorf("field %s: %w", name, contract.ErrPermissionDenied)
		}
		if seen[entry.PersonName] {
			continue
		}
		seen[entry.PersonName] = true
		scope.Fields = append(scope.Fields, entry)
	}
	if scope.Empty() {
		return Scope{}, fmt.Errorf("fields: %w", contract.ErrValidation)
	}
	return scope, nil
}

func allowedFields(scope Scope) map[string]bool {
	out := make(map[string]bool, len(scope.Fields))
	for _, f := range scope.Fields {
		out[f.PersonName] = true
	}
	return out
}

// RemoveFiles はコミット後に不要になったファイルを削除します。失敗はログのみ出力します。
func (e *Engine) RemoveFiles(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := e.storage.Remove(ctx, path); err != nil {
			e.logger.Warn("failed to remove stale attachment file", zap.String("path", path), zap.Error(err))
		}
	}
}

func (s *Service) removeStaleFiles(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	s.engine.RemoveFiles(ctx, paths)
}

func (s *Service) publish(ctx context.Context, ev event.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish sync event",
			zap.String("contract_id", ev.ContractID),
			zap.String("event_type", string(ev.Type)),
			zap.Error(err),
		)
	}
}
