package profile

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
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

// ChangeListener はプロフィール更新のコミット後に呼び出されます。
type ChangeListener interface {
	ProfileChanged(ctx context.Context, personID string) error
}

// Service は本人によるプロフィール参照・更新を提供します。
type Service struct {
	repo     Repository
	clock    Clock
	tx       TransactionManager
	listener ChangeListener
	logger   *zap.Logger
}

// NewService は Service を生成します。listener は nil でも構いません。
func NewService(repo Repository, clock Clock, tx TransactionManager, listener ChangeListener, logger *zap.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, clock: clock, tx: tx, listener: listener, logger: logger}
}

// UpdateProfileInput はプロフィール更新時の入力です。nil の項目は変更しません。
type UpdateProfileInput struct {
	PersonID string

	Name        *string
	EnglishName *string
	BirthDate   *time.Time
	Gender      *string
	Nationality *string

	Email            *string
	Phone            *string
	MobilePhone      *string
	Address          *string
	AddressDetail    *string
	PostalCode       *string
	EmergencyContact *string

	Hobby     *string
	Specialty *string
}

// GetProfile はプロフィールを返します。
func (s *Service) GetProfile(ctx context.Context, personID string) (*Profile, error) {
	if strings.TrimSpace(personID) == "" {
		return nil, fmt.Errorf("person_id: %w", ErrInvalidID)
	}
	return s.repo.FindByPersonID(ctx, personID)
}

// UpdateProfile は本人のプロフィールを更新し、コミット後に変更を通知します。
func (s *Service) UpdateProfile(ctx context.Context, actorUserID string, in UpdateProfileInput) (*Profile, error) {
	if strings.TrimSpace(in.PersonID) == "" {
		return nil, fmt.Errorf("person_id: %w", ErrInvalidID)
	}
	if actorUserID != in.PersonID {
		return nil, ErrPermissionDenied
	}

	var updated *Profile
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByPersonID(txCtx, in.PersonID)
		if err != nil {
			return err
		}
		if err := in.apply(existing); err != nil {
			return err
		}
		existing.UpdatedAt = s.clock.Now()
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.listener != nil {
		if err := s.listener.ProfileChanged(ctx, updated.PersonID); err != nil {
			s.logger.Warn("profile change propagation failed",
				zap.String("person_id", updated.PersonID),
				zap.Error(err),
			)
		}
	}
	return updated, nil
}

func (in UpdateProfileInput) apply(p *Profile) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return ErrInvalidName
		}
		p.Name = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			addr, err := mail.ParseAddress(email)
			if err != nil || addr.Address != email {
				return ErrInvalidEmail
			}
		}
		p.Email = email
	}
	if in.BirthDate != nil {
		d := in.BirthDate.UTC()
		p.BirthDate = &d
	}

	setText(&p.EnglishName, in.EnglishName)
	setText(&p.Gender, in.Gender)
	setText(&p.Nationality, in.Nationality)
	setText(&p.Phone, in.Phone)
	setText(&p.MobilePhone, in.MobilePhone)
	setText(&p.Address, in.Address)
	setText(&p.AddressDetail, in.AddressDetail)
	setText(&p.PostalCode, in.PostalCode)
	setText(&p.EmergencyContact, in.EmergencyContact)
	setText(&p.Hobby, in.Hobby)
	setText(&p.Specialty, in.Specialty)
	return nil
}

func setText(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
