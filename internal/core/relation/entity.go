package relation

import "time"

// Kind は一覧形式の関連データの種類です。
type Kind string

const (
	KindEducation   Kind = "education"
	KindCareer      Kind = "career"
	KindCertificate Kind = "certificate"
	KindLanguage    Kind = "language"
	KindFamily      Kind = "family"
)

// AllKinds は定義済みの全種類です。
var AllKinds = []Kind{KindEducation, KindCareer, KindCertificate, KindLanguage, KindFamily}

// ParseKind は文字列を Kind に変換します。
func ParseKind(v string) (Kind, bool) {
	for _, k := range AllKinds {
		if string(k) == v {
			return k, true
		}
	}
	return "", false
}

// Row は所有者を付け替えて複製できる関連データ行です。
type Row[T any] interface {
	Rebind(ownerID string, sortOrder int) T
}

// Education は学歴です。
type Education struct {
	ID         string     `json:"id,omitempty"`
	OwnerID    string     `json:"owner_id"`
	SortOrder  int        `json:"sort_order"`
	SchoolName string     `json:"school_name"`
	Major      string     `json:"major,omitempty"`
	Degree     string     `json:"degree,omitempty"`
	Status     string     `json:"status,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// Rebind は ownerID の行として複製します。
func (e Education) Rebind(ownerID string, sortOrder int) Education {
	e.ID = ""
	e.OwnerID = ownerID
	e.SortOrder = sortOrder
	return e
}

// Career は職歴です。
type Career struct {
	ID          string     `json:"id,omitempty"`
	OwnerID     string     `json:"owner_id"`
	SortOrder   int        `json:"sort_order"`
	CompanyName string     `json:"company_name"`
	Department  string     `json:"department,omitempty"`
	Position    string     `json:"position,omitempty"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// Rebind は ownerID の行として複製します。
func (c Career) Rebind(ownerID string, sortOrder int) Career {
	c.ID = ""
	c.OwnerID = ownerID
	c.SortOrder = sortOrder
	return c
}

// Certificate は資格です。
type Certificate struct {
	ID           string     `json:"id,omitempty"`
	OwnerID      string     `json:"owner_id"`
	SortOrder    int        `json:"sort_order"`
	Name         string     `json:"name"`
	Issuer       string     `json:"issuer,omitempty"`
	Number       string     `json:"number,omitempty"`
	AcquiredDate *time.Time `json:"acquired_date,omitempty"`
}

// Rebind は ownerID の行として複製します。
func (c Certificate) Rebind(ownerID string, sortOrder int) Certificate {
	c.ID = ""
	c.OwnerID = ownerID
	c.SortOrder = sortOrder
	return c
}

// Language は語学力です。
type Language struct {
	ID          string `json:"id,omitempty"`
	OwnerID     string `json:"owner_id"`
	SortOrder   int    `json:"sort_order"`
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
	TestName    string `json:"test_name,omitempty"`
	Score       string `json:"score,omitempty"`
}

// Rebind は ownerID の行として複製します。
func (l Language) Rebind(ownerID string, sortOrder int) Language {
	l.ID = ""
	l.OwnerID = ownerID
	l.SortOrder = sortOrder
	return l
}

// FamilyMember は家族情報です。
type FamilyMember struct {
	ID           string     `json:"id,omitempty"`
	OwnerID      string     `json:"owner_id"`
	SortOrder    int        `json:"sort_order"`
	Name         string     `json:"name"`
	Relationship string     `json:"relationship"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Occupation   string     `json:"occupation,omitempty"`
	Cohabiting   bool       `json:"cohabiting"`
}

// Rebind は ownerID の行として複製します。
func (f FamilyMember) Rebind(ownerID string, sortOrder int) FamilyMember {
	f.ID = ""
	f.OwnerID = ownerID
	f.SortOrder = sortOrder
	return f
}
