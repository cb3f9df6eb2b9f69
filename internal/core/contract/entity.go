package contract

import "time"

// Status は契約の状態を表します。
type Status string

const (
	StatusRequested            Status = "requested"
	StatusApproved             Status = "approved"
	StatusRejected             Status = "rejected"
	StatusCancelled            Status = "cancelled"
	StatusTerminationRequested Status = "termination_requested"
	StatusTerminated           Status = "terminated"
	StatusExpired              Status = "expired"
)

// IsActive は在籍中の状態かどうかを返します。
func (s Status) IsActive() bool {
	return s == StatusApproved || s == StatusTerminationRequested
}

// IsTerminal は終端状態かどうかを返します。
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusTerminated, StatusExpired:
		return true
	default:
		return false
	}
}

// AccountType は操作者のアカウント種別です。
type AccountType string

const (
	AccountTypePersonal AccountType = "personal"
	AccountTypeCompany  AccountType = "company"
	AccountTypeSystem   AccountType = "system"
)

// SystemActorID はバッチ処理による遷移で記録される操作者 ID です。
const SystemActorID = "system"

// Actor は呼び出し元が申告した操作者です。認証は呼び出し側の責務です。
type Actor struct {
	UserID      string
	AccountType AccountType
	CompanyID   string
}

// SystemActor はバッチ処理用の操作者を返します。
func SystemActor() Actor {
	return Actor{UserID: SystemActorID, AccountType: AccountTypeSystem}
}

// Party は契約の当事者区分です。
type Party string

const (
	PartyPerson  Party = "person"
	PartyCompany Party = "company"
)

// Contract は個人アカウントと会社の関係を表す契約レコードです。
type Contract struct {
	ID             string
	PersonID       string
	CompanyID      string
	EmployeeID     *string
	Status         Status
	ContractType   string
	Position       string
	Department     string
	EmployeeNumber *string
	Message        *string

	RequestedBy string
	RequestedAt time.Time

	ApprovedBy *string
	ApprovedAt *time.Time

	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string

	CancelledBy        *string
	CancelledAt        *time.Time
	CancellationReason *string

	TerminationRequestedBy *string
	TerminationRequestedAt *time.Time
	TerminationReason      *string

	TerminationRejectedBy      *string
	TerminationRejectedAt      *time.Time
	TerminationRejectionReason *string

	TerminatedBy *string
	TerminatedAt *time.Time

	RetentionUntil    *time.Time
	RetentionPurgedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartyOf は操作者がこの契約のどちら側の当事者かを返します。
func (c *Contract) PartyOf(actor Actor) (Party, bool) {
	switch actor.AccountType {
	case AccountTypePersonal:
		if actor.UserID != "" && actor.UserID == c.PersonID {
			return PartyPerson, true
		}
	case AccountTypeCompany:
		if actor.CompanyID != "" && actor.CompanyID == c.CompanyID {
			return PartyCompany, true
		}
	}
	return "", false
}

// RequesterParty は契約申請者の当事者区分です。
func (c *Contract) RequesterParty() Party {
	return partyOfUser(c, c.RequestedBy)
}

// TerminationRequesterParty は解約申請者の当事者区分です。解約申請中でなければ false を返します。
func (c *Contract) TerminationRequesterParty() (Party, bool) {
	if c.TerminationRequestedBy == nil {
		return "", false
	}
	return partyOfUser(c, *c.TerminationRequestedBy), true
}

func partyOfUser(c *Contract, userID string) Party {
	if userID == c.PersonID {
		return PartyPerson
	}
	return PartyCompany
}

// Clone は契約のディープコピーを返します。
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	cp := *c
	cp.EmployeeID = cloneString(c.EmployeeID)
	cp.EmployeeNumber = cloneString(c.EmployeeNumber)
	cp.Message = cloneString(c.Message)
	cp.ApprovedBy = cloneString(c.ApprovedBy)
	cp.ApprovedAt = cloneTime(c.ApprovedAt)
	cp.RejectedBy = cloneString(c.RejectedBy)
	cp.RejectedAt = cloneTime(c.RejectedAt)
	cp.RejectionReason = cloneString(c.RejectionReason)
	cp.CancelledBy = cloneString(c.CancelledBy)
	cp.CancelledAt = cloneTime(c.CancelledAt)
	cp.CancellationReason = cloneString(c.CancellationReason)
	cp.TerminationRequestedBy = cloneString(c.TerminationRequestedBy)
	cp.TerminationRequestedAt = cloneTime(c.TerminationRequestedAt)
	cp.TerminationReason = cloneString(c.TerminationReason)
	cp.TerminationRejectedBy = cloneString(c.TerminationRejectedBy)
	cp.TerminationRejectedAt = cloneTime(c.TerminationRejectedAt)
	cp.TerminationRejectionReason = cloneString(c.TerminationRejectionReason)
	cp.TerminatedBy = cloneString(c.TerminatedBy)
	cp.TerminatedAt = cloneTime(c.TerminatedAt)
	cp.RetentionUntil = cloneTime(c.RetentionUntil)
	cp.RetentionPurgedAt = cloneTime(c.RetentionPurgedAt)
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
