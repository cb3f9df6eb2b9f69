package fieldmap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
)

// ErrInvalidTable は対応表の定義が不正な場合に返却されます。
var ErrInvalidTable = errors.New("fieldmap: invalid table")

// ErrInvalidValue は値を項目の型に変換できない場合に返却されます。
var ErrInvalidValue = errors.New("fieldmap: invalid value")

// DateLayout は日付項目の正規化表現です。
const DateLayout = "2006-01-02"

// Field は同期対象の基本項目です。
type Field string

const (
	FieldName        Field = "name"
	FieldEnglishName Field = "english_name"
	FieldBirthDate   Field = "birth_date"
	FieldGender      Field = "gender"
	FieldNationality Field = "nationality"

	FieldEmail            Field = "email"
	FieldPhone            Field = "phone"
	FieldMobilePhone      Field = "mobile_phone"
	FieldAddress          Field = "address"
	FieldAddressDetail    Field = "address_detail"
	FieldPostalCode       Field = "postal_code"
	FieldEmergencyContact Field = "emergency_contact"

	FieldHobby             Field = "hobby"
	FieldSpecialty         Field = "specialty"
	FieldMilitaryStatus    Field = "military_status"
	FieldMilitaryBranch    Field = "military_branch"
	FieldMilitaryRank      Field = "military_rank"
	FieldMilitaryStartDate Field = "military_start_date"
	FieldMilitaryEndDate   Field = "military_end_date"
)

// AllFields は対応表に必ず 1 回ずつ含まれる項目です。
var AllFields = []Field{
	FieldName, FieldEnglishName, FieldBirthDate, FieldGender, FieldNationality,
	FieldEmail, FieldPhone, FieldMobilePhone, FieldAddress, FieldAddressDetail, FieldPostalCode, FieldEmergencyContact,
	FieldHobby, FieldSpecialty, FieldMilitaryStatus, FieldMilitaryBranch, FieldMilitaryRank, FieldMilitaryStartDate, FieldMilitaryEndDate,
}

// Bucket は項目のまとまりです。
type Bucket string

const (
	BucketBasic   Bucket = "basic"
	BucketContact Bucket = "contact"
	BucketExtra   Bucket = "extra"
)

// Kind は項目の値の型です。
type Kind string

const (
	KindText Kind = "text"
	KindDate Kind = "date"
)

// Gate は項目の同期可否を決める共有設定の項目です。
type Gate string

const (
	GateBasic    Gate = "share_basic"
	GateContact  Gate = "share_contact"
	GateMilitary Gate = "share_military"
)

// Enabled は cfg でこのゲートが許可されているかを返します。
func (g Gate) Enabled(cfg *sharing.Config) bool {
	if cfg == nil {
		return false
	}
	switch g {
	case GateBasic:
		return cfg.ShareBasic
	case GateContact:
		return cfg.ShareContact
	case GateMilitary:
		return cfg.ShareMilitary
	default:
		return false
	}
}

// Accessor はレコードの項目を正規化文字列で読み書きします。
type Accessor[T any] struct {
	Get func(T) string
	Set func(T, string) error
}

func (a Accessor[T]) valid() bool {
	return a.Get != nil && a.Set != nil
}

// Entry は 1 項目分の対応です。
type Entry struct {
	Field         Field
	PersonName    string
	EmployeeName  string
	Bucket        Bucket
	Kind          Kind
	Bidirectional bool
	Gate          Gate
	Person        Accessor[*profile.Profile]
	Employee      Accessor[*employee.Employee]
}

// Table は検証済みの項目対応表です。
type Table struct {
	entries []Entry
	byName  map[string]int
}

// New は entries を検証して Table を生成します。
func New(entries []Entry) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(entries)*2)}
	seen := make(map[Field]bool, len(entries))

	for i, e := range entries {
		if seen[e.Field] {
			return nil, fmt.Errorf("%w: field %q mapped twice", ErrInvalidTable, e.Field)
		}
		seen[e.Field] = true

		switch e.Bucket {
		case BucketBasic, BucketContact, BucketExtra:
		default:
			return nil, fmt.Errorf("%w: field %q has unknown bucket %q", ErrInvalidTable, e.Field, e.Bucket)
		}
		switch e.Kind {
		case KindText, KindDate:
		default:
			return nil, fmt.Errorf("%w: field %q has unknown kind %q", ErrInvalidTable, e.Field, e.Kind)
		}
		switch e.Gate {
		case GateBasic, GateContact, GateMilitary:
		default:
			return nil, fmt.Errorf("%w: field %q has unknown gate %q", ErrInvalidTable, e.Field, e.Gate)
		}
		if !e.Person.valid() || !e.Employee.valid() {
			return nil, fmt.Errorf("%w: field %q is missing accessors", ErrInvalidTable, e.Field)
		}
		if e.PersonName == "" || e.EmployeeName == "" {
			return nil, fmt.Errorf("%w: field %q is missing a name", ErrInvalidTable, e.Field)
		}

		for _, name := range uniqueNames(e.PersonName, e.EmployeeName) {
			if other, ok := t.byName[name]; ok {
				return nil, fmt.Errorf("%w: name %q used by %q and %q", ErrInvalidTable, name, entries[other].Field, e.Field)
			}
			t.byName[name] = i
		}
		t.entries = append(t.entries, e)
	}

	for _, f := range AllFields {
		if !seen[f] {
			return nil, fmt.Errorf("%w: field %q is not mapped", ErrInvalidTable, f)
		}
	}
	if len(seen) != len(AllFields) {
		return nil, fmt.Errorf("%w: unknown field in table", ErrInvalidTable)
	}
	return t, nil
}

func uniqueNames(a, b string) []string {
	if a == b {
		return []string{a}
	}
	return []string{a, b}
}

// Default は既定の対応表を返します。
func Default() (*Table, error) {
	return New(defaultEntries())
}

// MustDefault は既定の対応表を返します。定義が不正な場合は panic します。
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Entries は定義順の全項目を返します。
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Lookup は個人側・社員側どちらの名称でも項目を検索します。
func (t *Table) Lookup(name string) (Entry, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Allowed は cfg で同期が許可されている項目を定義順に返します。
func (t *Table) Allowed(cfg *sharing.Config) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Gate.Enabled(cfg) {
			out = append(out, e)
		}
	}
	return out
}

// Text は文字列項目の Accessor を生成します。
func Text[T any](ptr func(T) *string) Accessor[T] {
	return Accessor[T]{
		Get: func(r T) string {
			return strings.TrimSpace(*ptr(r))
		},
		Set: func(r T, v string) error {
			*ptr(r) = strings.TrimSpace(v)
			return nil
		},
	}
}

// Date は日付項目の Accessor を生成します。空文字は nil として扱います。
func Date[T any](ptr func(T) **time.Time) Accessor[T] {
	return Accessor[T]{
		Get: func(r T) string {
			return FormatDate(*ptr(r))
		},
		Set: func(r T, v string) error {
			d, err := ParseDate(v)
			if err != nil {
				return err
			}
			*ptr(r) = d
			return nil
		},
	}
}

// FormatDate は日付を UTC の YYYY-MM-DD で返します。nil の場合は空文字です。
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ParseDate は YYYY-MM-DD を UTC の日付に変換します。
func ParseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(DateLayout, v, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidValue, v)
	}
	return &d, nil
}
