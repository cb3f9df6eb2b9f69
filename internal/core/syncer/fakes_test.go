package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/event"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/relation"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
	"github.com/ogurasousui/hrlink/internal/core/synclog"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeProfiles struct {
	profiles map[string]*profile.Profile
	updates  int
}

func (f *fakeProfiles) FindByPersonID(_ context.Context, personID string) (*profile.Profile, error) {
	p, ok := f.profiles[personID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (f *fakeProfiles) Update(_ context.Context, p *profile.Profile) (*profile.Profile, error) {
	f.updates++
	f.profiles[p.PersonID] = p.Clone()
	return p.Clone(), nil
}

type fakeEmployees struct {
	employees map[string]*employee.Employee
	updates   int
}

func (f *fakeEmployees) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	f.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (f *fakeEmployees) Update(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	f.updates++
	f.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (f *fakeEmployees) FindByID(_ context.Context, id string) (*employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return e.Clone(), nil
}

func (f *fakeEmployees) ListByCompanyAndPerson(_ context.Context, companyID, personID string) ([]*employee.Employee, error) {
	var out []*employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && e.PersonID == personID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

type fakeAttachments struct {
	rows []*attachment.Attachment
}

func (f *fakeAttachments) ListByOwner(_ context.Context, ownerType attachment.OwnerType, ownerID string, category attachment.Category) ([]*attachment.Attachment, error) {
	var out []*attachment.Attachment
	for _, a := range f.rows {
		if a.OwnerType == ownerType && a.OwnerID == ownerID && a.Category == category {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAttachments) ListSynced(_ context.Context, contractID string, category attachment.Category) ([]*attachment.Attachment, error) {
	var out []*attachment.Attachment
	for _, a := range f.rows {
		if isSyncedFor(a, contractID, category) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAttachments) DeleteSynced(_ context.Context, contractID string, category attachment.Category) ([]*attachment.Attachment, error) {
	var kept, removed []*attachment.Attachment
	for _, a := range f.rows {
		if isSyncedFor(a, contractID, category) {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	f.rows = kept
	return removed, nil
}

func (f *fakeAttachments) Create(_ context.Context, a *attachment.Attachment) (*attachment.Attachment, error) {
	cp := *a
	f.rows = append(f.rows, &cp)
	return a, nil
}

func (f *fakeAttachments) FreezeDeletable(_ context.Context, contractID string, at time.Time) (int, error) {
	n := 0
	for _, a := range f.rows {
		if a.SourceContractID != nil && *a.SourceContractID == contractID && a.DeletableOnTermination {
			t := at
			a.FrozenAt = &t
			n++
		}
	}
	return n, nil
}

func (f *fakeAttachments) DeleteFrozen(_ context.Context, contractID string) ([]*attachment.Attachment, error) {
	var kept, removed []*attachment.Attachment
	for _, a := range f.rows {
		if a.SourceContractID != nil && *a.SourceContractID == contractID && a.FrozenAt != nil {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	f.rows = kept
	return removed, nil
}

func isSyncedFor(a *attachment.Attachment, contractID string, category attachment.Category) bool {
	return a.SourceType == attachment.SourceSynced && a.SourceContractID != nil && *a.SourceContractID == contractID && a.Category == category
}

type fakeStorage struct {
	missing map[string]bool
	copies  int
	removed []string
}

func (f *fakeStorage) Copy(_ context.Context, src string, ownerType attachment.OwnerType, ownerID string, category attachment.Category) (string, error) {
	if f.missing[src] {
		return "", errors.New("source file does not exist")
	}
	f.copies++
	return fmt.Sprintf("%s/%s/%s/copy-%d", ownerType, ownerID, category, f.copies), nil
}

func (f *fakeStorage) Remove(_ context.Context, path string) error {
	f.removed = append(f.removed, path)
	return nil
}

type fakeLogs struct {
	entries []*synclog.Entry
}

func (f *fakeLogs) Append(_ context.Context, entries ...*synclog.Entry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeLogs) ListByContract(_ context.Context, contractID string, limit int) ([]*synclog.Entry, error) {
	var out []*synclog.Entry
	for _, e := range f.entries {
		if e.ContractID == contractID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeContracts struct {
	contracts map[string]*contract.Contract
	locked    []string
}

func (f *fakeContracts) FindByIDForUpdate(ctx context.Context, id string) (*contract.Contract, error) {
	f.locked = append(f.locked, id)
	return f.FindByID(ctx, id)
}

func (f *fakeContracts) FindByID(_ context.Context, id string) (*contract.Contract, error) {
	c, ok := f.contracts[id]
	if !ok {
		return nil, contract.ErrContractNotFound
	}
	return c.Clone(), nil
}

func (f *fakeContracts) ListActiveByPerson(_ context.Context, personID string) ([]*contract.Contract, error) {
	var out []*contract.Contract
	for _, c := range f.contracts {
		if c.PersonID == personID && c.Status.IsActive() {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

type fakeConfigs struct {
	configs map[string]*sharing.Config
}

func (f *fakeConfigs) Create(_ context.Context, cfg *sharing.Config) (*sharing.Config, error) {
	f.configs[cfg.ContractID] = cfg.Clone()
	return cfg.Clone(), nil
}

func (f *fakeConfigs) Update(_ context.Context, cfg *sharing.Config) (*sharing.Config, error) {
	f.configs[cfg.ContractID] = cfg.Clone()
	return cfg.Clone(), nil
}

func (f *fakeConfigs) FindByContractID(_ context.Context, contractID string) (*sharing.Config, error) {
	cfg, ok := f.configs[contractID]
	if !ok {
		return nil, sharing.ErrConfigNotFound
	}
	return cfg.Clone(), nil
}

func (f *fakeConfigs) DeleteByContractID(_ context.Context, contractID string) error {
	delete(f.configs, contractID)
	return nil
}

type recordingPublisher struct {
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.events = append(p.events, e)
	return nil
}

const (
	testContractID = "0f3b8f0e-2d4b-4c1e-9a57-0c2f4c8e6a11"
	testPersonID   = "person-1"
	testCompanyID  = "company-1"
	testEmployeeID = "employee-1"
)

type env struct {
	clock       *stubClock
	profiles    *fakeProfiles
	employees   *fakeEmployees
	personRel   relation.Set
	employeeRel relation.Set
	attachments *fakeAttachments
	storage     *fakeStorage
	logs        *fakeLogs
	contracts   *fakeContracts
	configs     *fakeConfigs
	publisher   *recordingPublisher
	engine      *Engine
	service     *Service
}

func newEnv() *env {
	employeeID := testEmployeeID
	e := &env{
		clock: &stubClock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
		profiles: &fakeProfiles{profiles: map[string]*profile.Profile{
			testPersonID: {PersonID: testPersonID, AccountType: profile.AccountTypePersonal, Name: "A"},
		}},
		employees: &fakeEmployees{employees: map[string]*employee.Employee{
			testEmployeeID: {ID: testEmployeeID, CompanyID: testCompanyID, PersonID: testPersonID, Status: employee.StatusActive, Name: "A"},
		}},
		personRel:   relation.NewMemorySet(),
		employeeRel: relation.NewMemorySet(),
		attachments: &fakeAttachments{},
		storage:     &fakeStorage{missing: map[string]bool{}},
		logs:        &fakeLogs{},
		contracts: &fakeContracts{contracts: map[string]*contract.Contract{
			testContractID: {
				ID:         testContractID,
				PersonID:   testPersonID,
				CompanyID:  testCompanyID,
				EmployeeID: &employeeID,
				Status:     contract.StatusApproved,
			},
		}},
		publisher: &recordingPublisher{},
	}
	e.configs = &fakeConfigs{configs: map[string]*sharing.Config{
		testContractID: sharing.Default(testContractID, e.clock.now),
	}}
	e.engine = NewEngine(EngineDeps{
		Profiles:          e.profiles,
		Employees:         e.employees,
		PersonRelations:   e.personRel,
		EmployeeRelations: e.employeeRel,
		Attachments:       e.attachments,
		Storage:           e.storage,
		Logs:              e.logs,
		Clock:             e.clock,
	})
	e.service = NewService(ServiceDeps{
		Engine:    e.engine,
		Contracts: e.contracts,
		Configs:   e.configs,
		Profiles:  e.profiles,
		Employees: e.employees,
		Clock:     e.clock,
		Publisher: e.publisher,
	})
	return e
}

var (
	personActor  = contract.Actor{UserID: testPersonID, AccountType: contract.AccountTypePersonal}
	companyActor = contract.Actor{UserID: "admin-1", AccountType: contract.AccountTypeCompany, CompanyID: testCompanyID}
)
