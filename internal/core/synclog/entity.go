package synclog

import "time"

// SyncType は同期の契機です。
type SyncType string

const (
	SyncTypeInitial SyncType = "initial"
	SyncTypeManual  SyncType = "manual"
	SyncTypeAuto    SyncType = "auto"
)

// Direction は同期の方向です。
type Direction string

const (
	DirectionPersonToCompany Direction = "person_to_company"
	DirectionCompanyToPerson Direction = "company_to_person"
)

// Entry は 1 件の同期差分の監査記録です。追記のみで更新・削除は行いません。
type Entry struct {
	ID         string
	ContractID string
	SyncType   SyncType
	// EntityType は項目名、関連データ種別、添付分類のいずれかです。
	EntityType string
	Direction  Direction
	OldValue   *string
	NewValue   *string
	ActorID    string
	CreatedAt  time.Time
}
