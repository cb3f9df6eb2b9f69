package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type はドメインイベントの種類です。
type Type string

const (
	TypeContractRequested    Type = "contract.requested"
	TypeContractApproved     Type = "contract.approved"
	TypeContractRejected     Type = "contract.rejected"
	TypeContractCancelled    Type = "contract.cancelled"
	TypeContractExpired      Type = "contract.expired"
	TypeTerminationRequested Type = "contract.termination_requested"
	TypeTerminationRejected  Type = "contract.termination_rejected"
	TypeContractTerminated   Type = "contract.terminated"
	TypeSyncCompleted        Type = "sync.completed"
	TypeSyncFailed           Type = "sync.failed"
)

// Event は通知・監査サブシステムへ送るドメインイベントです。
// ユーザー向けの文言は含めません。
type Event struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	ContractID string            `json:"contract_id"`
	PersonID   string            `json:"person_id,omitempty"`
	CompanyID  string            `json:"company_id,omitempty"`
	ActorID    string            `json:"actor_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// New は ID を採番したイベントを生成します。
func New(t Type, contractID, personID, companyID, actorID string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		ContractID: contractID,
		PersonID:   personID,
		CompanyID:  companyID,
		ActorID:    actorID,
		OccurredAt: at,
		Attributes: map[string]string{},
	}
}

// Publisher はドメインイベントの送信先です。
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher は何もしない Publisher です。
type NopPublisher struct{}

// Publish は常に nil を返します。
func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
