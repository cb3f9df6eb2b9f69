package fieldmap

import (
	"time"

	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/profile"
)

func defaultEntries() []Entry {
	return []Entry{
		{
			Field: FieldName, PersonName: "name", EmployeeName: "name",
			Bucket: BucketBasic, Kind: KindText, Gate: GateBasic,
			Person:   Text(func(p *profile.Profile) *string { return &p.Name }),
			Employee: Text(func(e *employee.Employee) *string { return &e.Name }),
		},
		{
			Field: FieldEnglishName, PersonName: "english_name", EmployeeName: "name_en",
			Bucket: BucketBasic, Kind: KindText, Gate: GateBasic, Bidirectional: true,
			Person:   Text(func(p *profile.Profile) *string { return &p.EnglishName }),
			Employee: Text(func(e *employee.Employee) *string { return &e.NameEn }),
		},
		{
			Field: FieldBirthDate, PersonName: "birth_date", EmployeeName: "date_of_birth",
			Bucket: BucketBasic, Kind: KindDate, Gate: GateBasic,
			Person:   Date(func(p *profile.Profile) **time.Time { return &p.BirthDate }),
			Employee: Date(func(e *employee.Employee) **time.Time { return &e.DateOfBirth }),
		},
		{
			Field: FieldGender, PersonName: "gender", EmployeeName: "sex",
			Bucket: BucketBasic, Kind: KindText, Gate: GateBasic,
			Person:   Text(func(p *profile.Profile) *string { return &p.Gender }),
			Employee: Text(func(e *employee.Employee) *string { return &e.Sex }),
		},
		{
			Field: FieldNationality, PersonName: "nationality", EmployeeName: "nationality",
			Bucket: BucketBasic, Kind: KindText, Gate: GateBasic,
			Person:   Text(func(p *profile.Profile) *string { return &p.Nationality }),
			Employee: Text(func(e *employee.Employee) *string { return &e.Nationality }),
		},
		{
			Field: FieldEmail, PersonName: "email", EmployeeName: "email",
			Bucket: BucketContact, Kind: KindText, Gate: GateContact, Bidirectional: true,
			Person:   Text(func(p *profile.Profile) *string { return &p.Email }),
			Employee: Text(func(e *employee.Employee) *string { return &e.Email }),
		},
		{
			Field: FieldPhone, PersonName: "phone", EmployeeName: "phone_number",
			Bucket: BucketContact, Kind: KindText, Gate: GateContact, Bidirectional: true,
			Person:   Text(func(p *profile.Profile) *string { return &p.Phone }),
			Employee: Text(func(e *employee.Employee) *string { return &e.PhoneNumber }),
		},
		{
			Field: FieldMobilePhone, PersonName: "mobile_phone", EmployeeName: "mobile",
			Bucket: BucketContact, Kind: KindText, Gate: GateContact, Bidirectional: true,
			Person:   Text(func(p *profile.Profile) *string { return &p.MobilePhone }),
			Employee: Text(func(e *employee.Employee) *string { return &e.Mobile }),
		},
		{
			Field: FieldAddress, PersonName: "address", EmployeeName: "home_address",
			Bucket: BucketContact, Kind: KindText, Gate: GateContact, Bidirectional: true,
			Person:   Text(func(p *profile.Profile) *string { return &p.Address }),
			Employee: Text(func(e *employee.Employee) *string { return &e.HomeAddress }),
		},
		{
			Field: FieldAddressDetail, PersonName: "address_detail", EmployeeName: "home_address_detail",
			Bucket: BucketContact, Kind: KindText, Gate: GateContact, Bidirectional: true,
			Person:   Text(func(p *profile.Profile) *string { return &p.AddressDetail }),
			Employee: Text(func(e *employee.Employee) *string { return &e.HomeAddressDetail }),
		},
		{
			Field: FieldPostalCode, PersonName: "postal_code", EmployeeName: "zip_code",
			Bucket: BucketContact, Kind: KindText, Gate: GateContact, Bidirectional: true,
			Person:   Text(func(p *profile.Profile) *string { return &p.PostalCode }),
			Employee: Text(func(e *employee.Employee) *string { return &e.ZipCode }),
		},
		{
			Field: FieldEmergencyContact, PersonName: "emergency_contact", EmployeeName: "emergency_phone",
			Bucket: BucketContact, Kind: KindText, Gate: GateContact, Bidirectional: true,
			Person:   Text(func(p *profile.Profile) *string { return &p.EmergencyContact }),
			Employee: Text(func(e *employee.Employee) *string { return &e.EmergencyPhone }),
		},
		{
			Field: FieldHobby, PersonName: "hobby", EmployeeName: "hobby",
			Bucket: BucketExtra, Kind: KindText, Gate: GateBasic,
			Person:   Text(func(p *profile.Profile) *string { return &p.Hobby }),
			Employee: Text(func(e *employee.Employee) *string { return &e.Hobby }),
		},
		{
			Field: FieldSpecialty, PersonName: "specialty", EmployeeName: "specialty",
			Bucket: BucketExtra, Kind: KindText, Gate: GateBasic,
			Person:   Text(func(p *profile.Profile) *string { return &p.Specialty }),
			Employee: Text(func(e *employee.Employee) *string { return &e.Specialty }),
		},
		{
			Field: FieldMilitaryStatus, PersonName: "military_status", EmployeeName: "military_service_type",
			Bucket: BucketExtra, Kind: KindText, Gate: GateMilitary,
			Person:   Text(func(p *profile.Profile) *string { return &p.MilitaryStatus }),
			Employee: Text(func(e *employee.Employee) *string { return &e.MilitaryServiceType }),
		},
		{
			Field: FieldMilitaryBranch, PersonName: "military_branch", EmployeeName: "military_branch",
			Bucket: BucketExtra, Kind: KindText, Gate: GateMilitary,
			Person:   Text(func(p *profile.Profile) *string { return &p.MilitaryBranch }),
			Employee: Text(func(e *employee.Employee) *string { return &e.MilitaryBranch }),
		},
		{
			Field: FieldMilitaryRank, PersonName: "military_rank", EmployeeName: "military_rank",
			Bucket: BucketExtra, Kind: KindText, Gate: GateMilitary,
			Person:   Text(func(p *profile.Profile) *string { return &p.MilitaryRank }),
			Employee: Text(func(e *employee.Employee) *string { return &e.MilitaryRank }),
		},
		{
			Field: FieldMilitaryStartDate, PersonName: "military_start_date", EmployeeName: "military_service_from",
			Bucket: BucketExtra, Kind: KindDate, Gate: GateMilitary,
			Person:   Date(func(p *profile.Profile) **time.Time { return &p.MilitaryStartDate }),
			Employee: Date(func(e *employee.Employee) **time.Time { return &e.MilitaryServiceFrom }),
		},
		{
			Field: FieldMilitaryEndDate, PersonName: "military_end_date", EmployeeName: "military_service_to",
			Bucket: BucketExtra, Kind: KindDate, Gate: GateMilitary,
			Person:   Date(func(p *profile.Profile) **time.Time { return &p.MilitaryEndDate }),
			Employee: Date(func(e *employee.Employee) **time.Time { return &e.MilitaryServiceTo }),
		},
	}
}
