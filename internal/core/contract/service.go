package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/core/event"
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

// Provisioning は承認時に確定した社員情報です。
type Provisioning struct {
	EmployeeID     string
	EmployeeNumber string
}

// Provisioner は承認時の社員作成・共有設定作成・初回同期を行います。呼び出し側のトランザクション内で実行されます。
type Provisioner interface {
	Provision(ctx context.Context, c *Contract, actor Actor) (*Provisioning, error)
}

// Terminator は契約終了時の後処理を行います。呼び出し側のトランザクション内で実行されます。
type Terminator interface {
	Terminate(ctx context.Context, c *Contract, actor Actor) error
}

// Observer は確定した状態遷移を受け取ります。
type Observer interface {
	ObserveTransition(from, to Status)
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(Status, Status) {}

const expireBatchSize = 100

// UseCase は契約ユースケースの公開インターフェースです。
type UseCase interface {
	RequestContract(ctx context.Context, actor Actor, in RequestContractInput) (*Contract, error)
	Approve(ctx context.Context, actor Actor, contractID string) (*Contract, error)
	Reject(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error)
	Cancel(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error)
	RequestTermination(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error)
	ApproveTermination(ctx context.Context, actor Actor, contractID string) (*Contract, error)
	RejectTermination(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error)
	Terminate(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error)
	GetContract(ctx context.Context, actor Actor, contractID string) (*Contract, error)
}

// Service は契約の状態遷移を管理します。
type Service struct {
	repo        Repository
	provisioner Provisioner
	terminator  Terminator
	clock       Clock
	tx          TransactionManager
	logger      *zap.Logger
	publisher   event.Publisher
	observer    Observer
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithLogger はロガーを設定します。
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher はイベント送信先を設定します。
func WithPublisher(p event.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithObserver は遷移の観測者を設定します。
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, provisioner Provisioner, terminator Terminator, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repo:        repo,
		provisioner: provisioner,
		terminator:  terminator,
		clock:       clock,
		tx:          tx,
		logger:      zap.NewNop(),
		publisher:   event.NopPublisher{},
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestContractInput は契約申請の入力です。
type RequestContractInput struct {
	PersonID     string
	CompanyID    string
	ContractType string
	Position     string
	Department   string
	Message      string
}

// RequestContract は個人または会社側から契約を申請します。
func (s *Service) RequestContract(ctx context.Context, actor Actor, in RequestContractInput) (*Contract, error) {
	personID := strings.TrimSpace(in.PersonID)
	companyID := strings.TrimSpace(in.CompanyID)
	if personID == "" {
		return nil, fmt.Errorf("person_id: %w", ErrValidation)
	}
	if companyID == "" {
		return nil, fmt.Errorf("company_id: %w", ErrValidation)
	}
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, fmt.Errorf("actor: %w", ErrValidation)
	}

	draft := &Contract{PersonID: personID, CompanyID: companyID}
	if _, ok := draft.PartyOf(actor); !ok {
		return nil, ErrPermissionDenied
	}

	var created *Contract
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureNoOtherActive(txCtx, personID, companyID, ""); err != nil {
			return err
		}
		if _, err := s.repo.FindPendingByPair(txCtx, personID, companyID); err == nil {
			return ErrPendingRequestExists
		} else if !errors.Is(err, ErrContractNotFound) {
			return err
		}

		now := s.clock.Now()
		c := &Contract{
			ID:           uuid.NewString(),
			PersonID:     personID,
			CompanyID:    companyID,
			Status:       StatusRequested,
			ContractType: strings.TrimSpace(in.ContractType),
			Position:     strings.TrimSpace(in.Position),
			Department:   strings.TrimSpace(in.Department),
			Message:      optionalText(in.Message),
			RequestedBy:  actor.UserID,
			RequestedAt:  now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		var err error
		created, err = s.repo.Create(txCtx, c)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, "", created, event.TypeContractRequested, actor)
	return created, nil
}

// Approve は相手方が申請を承認し、社員を確定させます。
func (s *Service) Approve(ctx context.Context, actor Actor, contractID string) (*Contract, error) {
	return s.mutate(ctx, actor, contractID, StatusRequested, StatusApproved, event.TypeContractApproved, func(txCtx context.Context, c *Contract, party Party, now time.Time) error {
		if party == c.RequesterParty() {
			return ErrPermissionDenied
		}
		if err := s.ensureNoOtherActive(txCtx, c.PersonID, c.CompanyID, c.ID); err != nil {
			return err
		}
		if s.provisioner == nil {
			return fmt.Errorf("contract: provisioner is not configured")
		}
		p, err := s.provisioner.Provision(txCtx, c, actor)
		if err != nil {
			return err
		}
		c.EmployeeID = &p.EmployeeID
		c.EmployeeNumber = &p.EmployeeNumber
		c.ApprovedBy = stringPtr(actor.UserID)
		c.ApprovedAt = &now

		// 書き込み直前に同じ組み合わせの有効契約を再確認する
		return s.ensureNoOtherActive(txCtx, c.PersonID, c.CompanyID, c.ID)
	})
}

// Reject は相手方が申請を却下します。
func (s *Service) Reject(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error) {
	return s.mutate(ctx, actor, contractID, StatusRequested, StatusRejected, event.TypeContractRejected, func(_ context.Context, c *Contract, party Party, now time.Time) error {
		if party == c.RequesterParty() {
			return ErrPermissionDenied
		}
		c.RejectedBy = stringPtr(actor.UserID)
		c.RejectedAt = &now
		c.RejectionReason = optionalText(reason)
		return nil
	})
}

// Cancel は申請者自身が申請を取り下げます。
func (s *Service) Cancel(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error) {
	return s.mutate(ctx, actor, contractID, StatusRequested, StatusCancelled, event.TypeContractCancelled, func(_ context.Context, c *Contract, party Party, now time.Time) error {
		if party != c.RequesterParty() {
			return ErrPermissionDenied
		}
		c.CancelledBy = stringPtr(actor.UserID)
		c.CancelledAt = &now
		c.CancellationReason = optionalText(reason)
		return nil
	})
}

// RequestTermination はいずれかの当事者が解約を申請します。
func (s *Service) RequestTermination(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error) {
	return s.mutate(ctx, actor, contractID, StatusApproved, StatusTerminationRequested, event.TypeTerminationRequested, func(_ context.Context, c *Contract, _ Party, now time.Time) error {
		c.TerminationRequestedBy = stringPtr(actor.UserID)
		c.TerminationRequestedAt = &now
		c.TerminationReason = optionalText(reason)
		return nil
	})
}

// ApproveTermination は解約申請の相手方が解約を承認し、契約を終了させます。
func (s *Service) ApproveTermination(ctx context.Context, actor Actor, contractID string) (*Contract, error) {
	return s.mutate(ctx, actor, contractID, StatusTerminationRequested, StatusTerminated, event.TypeContractTerminated, func(txCtx context.Context, c *Contract, party Party, now time.Time) error {
		requester, ok := c.TerminationRequesterParty()
		if !ok || party == requester {
			return ErrPermissionDenied
		}
		return s.terminate(txCtx, c, actor, now, nil)
	})
}

// RejectTermination は解約申請の相手方が申請を却下し、契約を有効状態に戻します。
func (s *Service) RejectTermination(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error) {
	return s.mutate(ctx, actor, contractID, StatusTerminationRequested, StatusApproved, event.TypeTerminationRejected, func(_ context.Context, c *Contract, party Party, now time.Time) error {
		requester, ok := c.TerminationRequesterParty()
		if !ok || party == requester {
			return ErrPermissionDenied
		}
		c.TerminationRequestedBy = nil
		c.TerminationRequestedAt = nil
		c.TerminationReason = nil
		c.TerminationRejectedBy = stringPtr(actor.UserID)
		c.TerminationRejectedAt = &now
		c.TerminationRejectionReason = optionalText(reason)
		return nil
	})
}

// Terminate は会社側が有効な契約を直接終了させます。
func (s *Service) Terminate(ctx context.Context, actor Actor, contractID, reason string) (*Contract, error) {
	return s.mutate(ctx, actor, contractID, StatusApproved, StatusTerminated, event.TypeContractTerminated, func(txCtx context.Context, c *Contract, party Party, now time.Time) error {
		if party != PartyCompany {
			return ErrPermissionDenied
		}
		return s.terminate(txCtx, c, actor, now, optionalText(reason))
	})
}

// GetContract は当事者に限り契約を返します。
func (s *Service) GetContract(ctx context.Context, actor Actor, contractID string) (*Contract, error) {
	if err := validateContractID(contractID); err != nil {
		return nil, err
	}

	var found *Contract
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := s.repo.FindByID(txCtx, contractID)
		if err != nil {
			return err
		}
		if _, ok := c.PartyOf(actor); !ok {
			return ErrPermissionDenied
		}
		found = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ExpireStaleRequests は olderThan より前に申請されたまま放置された契約を expired にします。更新件数を返します。
func (s *Service) ExpireStaleRequests(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("older_than: %w", ErrValidation)
	}
	before := s.clock.Now().Add(-olderThan)
	expired := 0

	for {
		stale, err := s.repo.ListStaleRequests(ctx, before, expireBatchSize)
		if err != nil {
			return expired, err
		}
		if len(stale) == 0 {
			return expired, nil
		}

		progressed := 0
		for _, candidate := range stale {
			ok, err := s.expireOne(ctx, candidate.ID)
			if err != nil {
				return expired, err
			}
			if ok {
				expired++
				progressed++
			}
		}
		if len(stale) < expireBatchSize || progressed == 0 {
			return expired, nil
		}
	}
}

func (s *Service) expireOne(ctx context.Context, id string) (bool, error) {
	var (
		updated *Contract
		skipped bool
	)
	actor := SystemActor()
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if c.Status != StatusRequested {
			skipped = true
			return nil
		}
		if err := Transition(c, StatusExpired); err != nil {
			return err
		}
		c.UpdatedAt = s.clock.Now()
		updated, err = s.repo.Update(txCtx, c)
		return err
	})
	if err != nil || skipped {
		return false, err
	}

	s.afterCommit(ctx, StatusRequested, updated, event.TypeContractExpired, actor)
	return true, nil
}

type mutation func(txCtx context.Context, c *Contract, party Party, now time.Time) error

// mutate は行ロック付きで契約を読み込み、当事者・遷移・役割の順に検証して更新します。
// 操作ごとに遷移元は source の一つだけです。
func (s *Service) mutate(ctx context.Context, actor Actor, contractID string, source, to Status, eventType event.Type, apply mutation) (*Contract, error) {
	if err := validateContractID(contractID); err != nil {
		return nil, err
	}

	var (
		from    Status
		updated *Contract
	)
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, err := s.repo.FindByIDForUpdate(txCtx, contractID)
		if err != nil {
			return err
		}

		party, ok := c.PartyOf(actor)
		if !ok {
			return ErrPermissionDenied
		}
		if c.Status != source || !CanTransition(c.Status, to) {
			return &TransitionError{From: c.Status, To: to}
		}

		from = c.Status
		now := s.clock.Now()
		if err := apply(txCtx, c, party, now); err != nil {
			return err
		}
		if err := Transition(c, to); err != nil {
			return err
		}
		c.UpdatedAt = now

		updated, err = s.repo.Update(txCtx, c)
		return err
	})
	if err != nil {
		s.logger.Error("contract transition aborted",
			zap.String("contract_id", contractID),
			zap.String("to", string(to)),
			zap.String("actor_id", actor.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	s.afterCommit(ctx, from, updated, eventType, actor)
	return updated, nil
}

func (s *Service) terminate(ctx context.Context, c *Contract, actor Actor, now time.Time, reason *string) error {
	if s.terminator == nil {
		return fmt.Errorf("contract: terminator is not configured")
	}
	if err := s.terminator.Terminate(ctx, c, actor); err != nil {
		return err
	}
	c.TerminatedBy = stringPtr(actor.UserID)
	c.TerminatedAt = &now
	if reason != nil {
		c.TerminationReason = reason
	}
	return nil
}

func (s *Service) ensureNoOtherActive(ctx context.Context, personID, companyID, selfID string) error {
	active, err := s.repo.FindActiveByPair(ctx, personID, companyID)
	if err != nil {
		if errors.Is(err, ErrContractNotFound) {
			return nil
		}
		return err
	}
	if active.ID != selfID {
		return ErrDuplicateActiveContract
	}
	return nil
}

// afterCommit はコミット後のメトリクス記録とイベント送信を行います。送信失敗はログのみ出力します。
func (s *Service) afterCommit(ctx context.Context, from Status, c *Contract, eventType event.Type, actor Actor) {
	if from != "" {
		s.observer.ObserveTransition(from, c.Status)
	}

	s.logger.Info("contract transition committed",
		zap.String("contract_id", c.ID),
		zap.String("from", string(from)),
		zap.String("to", string(c.Status)),
		zap.String("actor_id", actor.UserID),
	)

	ev := event.New(eventType, c.ID, c.PersonID, c.CompanyID, actor.UserID, s.clock.Now())
	ev.Attributes = map[string]string{"status": string(c.Status)}
	if from != "" {
		ev.Attributes["from"] = string(from)
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish contract event",
			zap.String("contract_id", c.ID),
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
	}
}

func validateContractID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("contract_id: %w", ErrValidation)
	}
	return nil
}

func optionalText(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringPtr(v string) *string {
	return &v
}
