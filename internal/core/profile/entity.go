package profile

import "time"

// AccountType はプロフィール所有アカウントの種別です。
type AccountType string

const (
	AccountTypePersonal      AccountType = "personal"
	AccountTypeCompanyMember AccountType = "company_member"
)

// Profile は個人が所有するプロフィールです。
type Profile struct {
	PersonID    string
	AccountType AccountType
	// LinkedCompanyID と LinkedEmployeeID は会社が発行したサブアカウントの場合のみ設定されます。
	LinkedCompanyID  *string
	LinkedEmployeeID *string

	Name        string
	EnglishName string
	BirthDate   *time.Time
	Gender      string
	Nationality string

	Email            string
	Phone            string
	MobilePhone      string
	Address          string
	AddressDetail    string
	PostalCode       string
	EmergencyContact string

	Hobby             string
	Specialty         string
	MilitaryStatus    string
	MilitaryBranch    string
	MilitaryRank      string
	MilitaryStartDate *time.Time
	MilitaryEndDate   *time.Time

	PhotoPath string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LinkedEmployeeFor は companyID の会社が発行したサブアカウントであれば紐づく社員 ID を返します。
func (p *Profile) LinkedEmployeeFor(companyID string) (string, bool) {
	if p.AccountType != AccountTypeCompanyMember || p.LinkedEmployeeID == nil || p.LinkedCompanyID == nil {
		return "", false
	}
	if *p.LinkedCompanyID != companyID {
		return "", false
	}
	return *p.LinkedEmployeeID, true
}

// Clone はプロフィールのコピーを返します。
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.LinkedCompanyID = cloneString(p.LinkedCompanyID)
	cp.LinkedEmployeeID = cloneString(p.LinkedEmployeeID)
	cp.BirthDate = cloneTime(p.BirthDate)
	cp.MilitaryStartDate = cloneTime(p.MilitaryStartDate)
	cp.MilitaryEndDate = cloneTime(p.MilitaryEndDate)
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
