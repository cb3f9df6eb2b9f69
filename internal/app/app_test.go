package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/company"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	"github.com/ogurasousui/hrlink/internal/core/event"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	"github.com/ogurasousui/hrlink/internal/core/relation"
	"github.com/ogurasousui/hrlink/internal/core/sharing"
	"github.com/ogurasousui/hrlink/internal/core/synclog"
	"github.com/ogurasousui/hrlink/internal/core/termination"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memContracts struct {
	rows map[string]*contract.Contract
}

func (m *memContracts) Create(_ context.Context, c *contract.Contract) (*contract.Contract, error) {
	m.rows[c.ID] = c.Clone()
	return c.Clone(), nil
}

func (m *memContracts) Update(_ context.Context, c *contract.Contract) (*contract.Contract, error) {
	if _, ok := m.rows[c.ID]; !ok {
		return nil, contract.ErrContractNotFound
	}
	m.rows[c.ID] = c.Clone()
	return c.Clone(), nil
}

func (m *memContracts) FindByID(_ context.Context, id string) (*contract.Contract, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, contract.ErrContractNotFound
	}
	return c.Clone(), nil
}

func (m *memContracts) FindByIDForUpdate(ctx context.Context, id string) (*contract.Contract, error) {
	return m.FindByID(ctx, id)
}

func (m *memContracts) FindActiveByPair(_ context.Context, personID, companyID string) (*contract.Contract, error) {
	return m.first(func(c *contract.Contract) bool {
		return c.Status.IsActive() && c.PersonID == personID && c.CompanyID == companyID
	})
}

func (m *memContracts) FindPendingByPair(_ context.Context, personID, companyID string) (*contract.Contract, error) {
	return m.first(func(c *contract.Contract) bool {
		return c.Status == contract.StatusRequested && c.PersonID == personID && c.CompanyID == companyID
	})
}

func (m *memContracts) ListActiveByPerson(_ context.Context, personID string) ([]*contract.Contract, error) {
	return m.filter(func(c *contract.Contract) bool {
		return c.Status.IsActive() && c.PersonID == personID
	}, 0), nil
}

func (m *memContracts) ListStaleRequests(_ context.Context, before time.Time, limit int) ([]*contract.Contract, error) {
	return m.filter(func(c *contract.Contract) bool {
		return c.Status == contract.StatusRequested && c.RequestedAt.Before(before)
	}, limit), nil
}

func (m *memContracts) ListRetentionElapsed(_ context.Context, now time.Time, limit int) ([]*contract.Contract, error) {
	return m.filter(func(c *contract.Contract) bool {
		return c.Status == contract.StatusTerminated && c.RetentionUntil != nil && !c.RetentionUntil.After(now) && c.RetentionPurgedAt == nil
	}, limit), nil
}

func (m *memContracts) first(match func(*contract.Contract) bool) (*contract.Contract, error) {
	if found := m.filter(match, 1); len(found) > 0 {
		return found[0], nil
	}
	return nil, contract.ErrContractNotFound
}

func (m *memContracts) filter(match func(*contract.Contract) bool, limit int) []*contract.Contract {
	var out []*contract.Contract
	for _, c := range m.rows {
		if match(c) && (limit <= 0 || len(out) < limit) {
			out = append(out, c.Clone())
		}
	}
	return out
}

type memProfiles map[string]*profile.Profile

func (m memProfiles) FindByPersonID(_ context.Context, personID string) (*profile.Profile, error) {
	p, ok := m[personID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (m memProfiles) Update(_ context.Context, p *profile.Profile) (*profile.Profile, error) {
	m[p.PersonID] = p.Clone()
	return p.Clone(), nil
}

type memEmployees map[string]*employee.Employee

func (m memEmployees) Create(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	m[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (m memEmployees) Update(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	m[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (m memEmployees) FindByID(_ context.Context, id string) (*employee.Employee, error) {
	e, ok := m[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return e.Clone(), nil
}

func (m memEmployees) ListByCompanyAndPerson(_ context.Context, companyID, personID string) ([]*employee.Employee, error) {
	var out []*employee.Employee
	for _, e := range m {
		if e.CompanyID == companyID && e.PersonID == personID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

type memCompanies map[string]*company.Company

func (m memCompanies) FindByID(_ context.Context, id string) (*company.Company, error) {
	c, ok := m[id]
	if !ok {
		return nil, company.ErrCompanyNotFound
	}
	cp := *c
	return &cp, nil
}

type memSequences map[string]int64

func (m memSequences) Next(_ context.Context, companyID string, scopeYear int) (int64, error) {
	key := fmt.Sprintf("%s/%d", companyID, scopeYear)
	m[key]++
	return m[key], nil
}

type memConfigs map[string]*sharing.Config

func (m memConfigs) Create(_ context.Context, cfg *sharing.Config) (*sharing.Config, error) {
	if _, ok := m[cfg.ContractID]; ok {
		return nil, sharing.ErrConfigAlreadyExists
	}
	m[cfg.ContractID] = cfg.Clone()
	return cfg.Clone(), nil
}

func (m memConfigs) Update(_ context.Context, cfg *sharing.Config) (*sharing.Config, error) {
	m[cfg.ContractID] = cfg.Clone()
	return cfg.Clone(), nil
}

func (m memConfigs) FindByContractID(_ context.Context, contractID string) (*sharing.Config, error) {
	cfg, ok := m[contractID]
	if !ok {
		return nil, sharing.ErrConfigNotFound
	}
	return cfg.Clone(), nil
}

func (m memConfigs) DeleteByContractID(_ context.Context, contractID string) error {
	if _, ok := m[contractID]; !ok {
		return sharing.ErrConfigNotFound
	}
	delete(m, contractID)
	return nil
}

type noAttachments struct{}

func (noAttachments) ListByOwner(context.Context, attachment.OwnerType, string, attachment.Category) ([]*attachment.Attachment, error) {
	return nil, nil
}

func (noAttachments) ListSynced(context.Context, string, attachment.Category) ([]*attachment.Attachment, error) {
	return nil, nil
}

func (noAttachments) DeleteSynced(context.Context, string, attachment.Category) ([]*attachment.Attachment, error) {
	return nil, nil
}

func (noAttachments) Create(_ context.Context, a *attachment.Attachment) (*attachment.Attachment, error) {
	return a, nil
}

func (noAttachments) FreezeDeletable(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

func (noAttachments) DeleteFrozen(context.Context, string) ([]*attachment.Attachment, error) {
	return nil, nil
}

type noStorage struct{}

func (noStorage) Copy(context.Context, string, attachment.OwnerType, string, attachment.Category) (string, error) {
	return "", errors.New("no files in this test")
}

func (noStorage) Remove(context.Context, string) error {
	return nil
}

type memLogs struct {
	entries []*synclog.Entry
}

func (m *memLogs) Append(_ context.Context, entries ...*synclog.Entry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memLogs) ListByContract(_ context.Context, contractID string, limit int) ([]*synclog.Entry, error) {
	var out []*synclog.Entry
	for _, e := range m.entries {
		if e.ContractID == contractID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

type memSnapshots map[string]*termination.Snapshot

func (m memSnapshots) Create(_ context.Context, s *termination.Snapshot) (*termination.Snapshot, error) {
	m[s.ContractID] = s
	return s, nil
}

func (m memSnapshots) FindByContractID(_ context.Context, contractID string) (*termination.Snapshot, error) {
	s, ok := m[contractID]
	if !ok {
		return nil, termination.ErrSnapshotNotFound
	}
	return s, nil
}

func (m memSnapshots) DeleteByContractID(_ context.Context, contractID string) error {
	if _, ok := m[contractID]; !ok {
		return termination.ErrSnapshotNotFound
	}
	delete(m, contractID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Type
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e.Type)
	return nil
}

type fixture struct {
	clock     *stubClock
	contracts *memContracts
	profiles  memProfiles
	employees memEmployees
	configs   memConfigs
	logs      *memLogs
	snapshots memSnapshots
	publisher *recordingPublisher
	app       *App
}

const (
	personID  = "person-1"
	companyID = "company-1"
)

var (
	personActor  = contract.Actor{UserID: personID, AccountType: contract.AccountTypePersonal}
	companyActor = contract.Actor{UserID: "admin-1", AccountType: contract.AccountTypeCompany, CompanyID: companyID}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:     &stubClock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
		contracts: &memContracts{rows: map[string]*contract.Contract{}},
		profiles: memProfiles{
			personID: {PersonID: personID, AccountType: profile.AccountTypePersonal, Name: "A", Email: "a@example.com"},
		},
		employees: memEmployees{},
		configs:   memConfigs{},
		logs:      &memLogs{},
		snapshots: memSnapshots{},
		publisher: &recordingPublisher{},
	}

	a, err := New(Stores{
		Contracts:         f.contracts,
		Profiles:          f.profiles,
		Employees:         f.employees,
		Companies:         memCompanies{companyID: {ID: companyID, Name: "Acme"}},
		Sequences:         memSequences{},
		Configs:           f.configs,
		PersonRelations:   relation.NewMemorySet(),
		EmployeeRelations: relation.NewMemorySet(),
		Attachments:       noAttachments{},
		Storage:           noStorage{},
		Logs:              f.logs,
		Snapshots:         f.snapshots,
	}, Options{
		Retention: 30 * 24 * time.Hour,
		Numbering: company.NumberingPolicy{Prefix: "EMP", Digits: 4, IncludeYear: true},
		Publisher: f.publisher,
		Clock:     f.clock,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	f.app = a
	return f
}

func TestApp_ContractLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	requested, err := f.app.Contracts.RequestContract(ctx, personActor, contract.RequestContractInput{
		PersonID:  personID,
		CompanyID: companyID,
		Position:  "Engineer",
	})
	if err != nil {
		t.Fatalf("RequestContract returned error: %v", err)
	}

	approved, err := f.app.Contracts.Approve(ctx, companyActor, requested.ID)
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if approved.Status != contract.StatusApproved || approved.EmployeeID == nil {
		t.Fatalf("unexpected approved contract %+v", approved)
	}
	if approved.EmployeeNumber == nil || *approved.EmployeeNumber != "EMP-2026-0001" {
		t.Fatalf("unexpected employee number %v", approved.EmployeeNumber)
	}

	emp := f.employees[*approved.EmployeeID]
	if emp == nil || emp.Name != "A" {
		t.Fatalf("expected initial sync to copy name, got %+v", emp)
	}
	if _, ok := f.configs[approved.ID]; !ok {
		t.Fatal("expected sharing config to be provisioned")
	}

	// プロフィール更新でリアルタイム同期が走る
	name := "B"
	if _, err := f.app.Profiles.UpdateProfile(ctx, personID, profile.UpdateProfileInput{PersonID: personID, Name: &name}); err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if got := f.employees[*approved.EmployeeID].Name; got != "B" {
		t.Fatalf("expected employee name B after auto sync, got %q", got)
	}

	// 変更が無ければ手動同期は何も書かない
	logged := len(f.logs.entries)
	res, err := f.app.Sync.SyncPersonToCompany(ctx, personActor, approved.ID, []string{"name"})
	if err != nil {
		t.Fatalf("SyncPersonToCompany returned error: %v", err)
	}
	if len(res.SyncedFields) != 0 || len(f.logs.entries) != logged {
		t.Fatalf("expected idempotent sync, got fields %v and %d new logs", res.SyncedFields, len(f.logs.entries)-logged)
	}

	terminated, err := f.app.Contracts.Terminate(ctx, companyActor, approved.ID, "restructuring")
	if err != nil {
		t.Fatalf("Terminate returned error: %v", err)
	}
	if terminated.Status != contract.StatusTerminated || terminated.RetentionUntil == nil {
		t.Fatalf("unexpected terminated contract %+v", terminated)
	}
	if f.employees[*approved.EmployeeID].Status != employee.StatusResigned {
		t.Fatal("expected employee to be resigned")
	}
	if _, ok := f.configs[approved.ID]; ok {
		t.Fatal("expected sharing config to be deleted")
	}
	if _, ok := f.snapshots[approved.ID]; !ok {
		t.Fatal("expected termination snapshot")
	}

	expired, purged, err := f.app.Housekeep(ctx, 72*time.Hour)
	if err != nil || expired != 0 || purged != 0 {
		t.Fatalf("expected nothing to purge yet, got %d %d %v", expired, purged, err)
	}

	f.clock.Advance(31 * 24 * time.Hour)
	_, purged, err = f.app.Housekeep(ctx, 72*time.Hour)
	if err != nil || purged != 1 {
		t.Fatalf("expected 1 purged contract, got %d %v", purged, err)
	}
	if _, ok := f.snapshots[approved.ID]; ok {
		t.Fatal("expected snapshot to be purged")
	}
	if f.contracts.rows[approved.ID].RetentionPurgedAt == nil {
		t.Fatal("expected retention_purged_at to be set")
	}

	f.publisher.mu.Lock()
	defer f.publisher.mu.Unlock()
	want := []event.Type{event.TypeContractRequested, event.TypeContractApproved}
	for i, typ := range want {
		if i >= len(f.publisher.events) || f.publisher.events[i] != typ {
			t.Fatalf("expected event %d to be %s, got %v", i, typ, f.publisher.events)
		}
	}
}

func TestApp_HousekeepExpiresStaleRequests(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	requested, err := f.app.Contracts.RequestContract(ctx, companyActor, contract.RequestContractInput{PersonID: personID, CompanyID: companyID})
	if err != nil {
		t.Fatalf("RequestContract returned error: %v", err)
	}

	f.clock.Advance(73 * time.Hour)
	expired, _, err := f.app.Housekeep(ctx, 72*time.Hour)
	if err != nil || expired != 1 {
		t.Fatalf("expected 1 expired request, got %d %v", expired, err)
	}
	if f.contracts.rows[requested.ID].Status != contract.StatusExpired {
		t.Fatalf("expected expired status, got %s", f.contracts.rows[requested.ID].Status)
	}
}

func TestNew_RequiresRetention(t *testing.T) {
	t.Parallel()

	if _, err := New(Stores{}, Options{}); err == nil {
		t.Fatal("expected error for zero retention")
	}
}
