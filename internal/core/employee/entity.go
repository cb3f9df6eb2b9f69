package employee

import "time"

// Status は社員の状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusResigned Status = "resigned"
)

// Employee は会社が所有する社員レコードです。プロフィール由来の項目は会社側の名称で保持します。
type Employee struct {
	ID             string
	CompanyID      string
	PersonID       string
	ContractID     *string
	EmployeeNumber string
	Status         Status
	Position       string
	Department     string
	HiredAt        *time.Time
	ResignedAt     *time.Time

	Name        string
	NameEn      string
	DateOfBirth *time.Time
	Sex         string
	Nationality string

	Email             string
	PhoneNumber       string
	Mobile            string
	HomeAddress       string
	HomeAddressDetail string
	ZipCode           string
	EmergencyPhone    string

	Hobby               string
	Specialty           string
	MilitaryServiceType string
	MilitaryBranch      string
	MilitaryRank        string
	MilitaryServiceFrom *time.Time
	MilitaryServiceTo   *time.Time

	PhotoPath string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resign は社員を退職状態にします。
func (e *Employee) Resign(at time.Time) {
	d := truncateDate(at)
	e.Status = StatusResigned
	e.ResignedAt = &d
}

// Reactivate は既存の社員を契約に再度紐づけて在籍状態に戻します。社員番号は変更しません。
func (e *Employee) Reactivate(contractID string) {
	e.Status = StatusActive
	e.ResignedAt = nil
	e.ContractID = &contractID
}

// Clone は社員のコピーを返します。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	cp := *e
	if e.ContractID != nil {
		v := *e.ContractID
		cp.ContractID = &v
	}
	cp.HiredAt = cloneTime(e.HiredAt)
	cp.ResignedAt = cloneTime(e.ResignedAt)
	cp.DateOfBirth = cloneTime(e.DateOfBirth)
	cp.MilitaryServiceFrom = cloneTime(e.MilitaryServiceFrom)
	cp.MilitaryServiceTo = cloneTime(e.MilitaryServiceTo)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func truncateDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today は t の UTC 日付を返します。
func Today(t time.Time) time.Time {
	return truncateDate(t)
}
