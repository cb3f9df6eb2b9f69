package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/hrlink/internal/core/attachment"
	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/fieldmap"
	"github.com/ogurasousui/hrlink/internal/core/relation"
	"github.com/ogurasousui/hrlink/internal/core/synclog"
)

func (e *env) plan(t *testing.T, direction synclog.Direction, scope Scope) Plan {
	t.Helper()
	ctx := context.Background()
	c, _ := e.contracts.FindByID(ctx, testContractID)
	p, _ := e.profiles.FindByPersonID(ctx, testPersonID)
	emp, _ := e.employees.FindByID(ctx, testEmployeeID)
	return Plan{
		Contract:  c,
		Profile:   p,
		Employee:  emp,
		Direction: direction,
		SyncType:  synclog.SyncTypeManual,
		ActorID:   "admin-1",
		Scope:     scope,
	}
}

func TestEngine_FieldsAreIdempotent(t *testing.T) {
	t.Parallel()

	e := newEnv()
	e.profiles.profiles[testPersonID].Name = "B"
	e.profiles.profiles[testPersonID].MobilePhone = "010-0000-0000"
	birth := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	e.profiles.profiles[testPersonID].BirthDate = &birth
	scope := Scope{Fields: e.engine.Table().Entries()}

	first, err := e.engine.Run(context.Background(), e.plan(t, synclog.DirectionPersonToCompany, scope))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := []string{"name", "birth_date", "mobile_phone"}
	if len(first.SyncedFields) != len(want) {
		t.Fatalf("unexpected synced fields: %v", first.SyncedFields)
	}
	for i, name := range want {
		if first.SyncedFields[i] != name {
			t.Errorf("synced field %d = %s, want %s", i, first.SyncedFields[i], name)
		}
	}
	if ch := first.Changes["name"]; ch.Old != "A" || ch.New != "B" {
		t.Errorf("unexpected name change: %+v", ch)
	}
	if len(e.logs.entries) != 3 || len(first.LogIDs) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(e.logs.entries))
	}
	if e.employees.updates != 1 {
		t.Fatalf("employee must be saved once, got %d", e.employees.updates)
	}

	emp := e.employees.employees[testEmployeeID]
	if emp.Name != "B" || emp.Mobile != "010-0000-0000" || emp.DateOfBirth == nil {
		t.Fatalf("employee not updated: %+v", emp)
	}

	second, err := e.engine.Run(context.Background(), e.plan(t, synclog.DirectionPersonToCompany, scope))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(second.SyncedFields) != 0 || len(second.LogIDs) != 0 {
		t.Fatalf("second run must be a no-op: %+v", second)
	}
	if e.employees.updates != 1 {
		t.Fatalf("no-op run must not save, got %d updates", e.employees.updates)
	}
}

func TestEngine_CompanyToPerson(t *testing.T) {
	t.Parallel()

	e := newEnv()
	e.employees.employees[testEmployeeID].Mobile = "010-9999-9999"
	entry, _ := e.engine.Table().Lookup("mobile")

	res, err := e.engine.Run(context.Background(), e.plan(t, synclog.DirectionCompanyToPerson, Scope{Fields: []fieldmap.Entry{entry}}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(res.SyncedFields) != 1 || res.SyncedFields[0] != "mobile" {
		t.Fatalf("unexpected synced fields: %v", res.SyncedFields)
	}
	if e.profiles.profiles[testPersonID].MobilePhone != "010-9999-9999" {
		t.Fatal("profile not updated")
	}
	if e.logs.entries[0].Direction != synclog.DirectionCompanyToPerson {
		t.Fatalf("unexpected direction: %s", e.logs.entries[0].Direction)
	}

	name, _ := e.engine.Table().Lookup("name")
	_, err = e.engine.Run(context.Background(), e.plan(t, synclog.DirectionCompanyToPerson, Scope{Fields: []fieldmap.Entry{name}}))
	if !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("expected ErrValidation for one-way field, got %v", err)
	}

	_, err = e.engine.Run(context.Background(), e.plan(t, synclog.DirectionCompanyToPerson, Scope{Relations: []relation.Kind{relation.KindCareer}}))
	if !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("expected ErrValidation for relation sync back, got %v", err)
	}
}

func TestEngine_RelationRoundTrip(t *testing.T) {
	t.Parallel()

	e := newEnv()
	ctx := context.Background()
	rows := []relation.Education{
		{ID: "s1", OwnerID: testPersonID, SchoolName: "Seoul High", SortOrder: 3},
		{ID: "s2", OwnerID: testPersonID, SchoolName: "KAIST", Major: "CS", SortOrder: 5},
		{ID: "s3", OwnerID: testPersonID, SchoolName: "SNU", Degree: "MS", SortOrder: 8},
	}
	_, _ = e.personRel.Education.ReplaceAll(ctx, testPersonID, rows)
	_, _ = e.employeeRel.Education.ReplaceAll(ctx, testEmployeeID, []relation.Education{{OwnerID: testEmployeeID, SchoolName: "edited by company"}})

	res, err := e.engine.Run(ctx, e.plan(t, synclog.DirectionPersonToCompany, Scope{Relations: []relation.Kind{relation.KindEducation}}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Relations[relation.KindEducation] != len(rows) {
		t.Fatalf("expected %d inserted rows, got %d", len(rows), res.Relations[relation.KindEducation])
	}

	dst, _ := e.employeeRel.Education.List(ctx, testEmployeeID)
	if len(dst) != len(rows) {
		t.Fatalf("expected %d destination rows, got %d", len(rows), len(dst))
	}
	for i := range rows {
		if dst[i].SchoolName != rows[i].SchoolName || dst[i].Major != rows[i].Major || dst[i].OwnerID != testEmployeeID {
			t.Errorf("row %d not copied: %+v", i, dst[i])
		}
	}

	if len(e.logs.entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(e.logs.entries))
	}
	entry := e.logs.entries[0]
	if entry.EntityType != "education" || entry.OldValue == nil || *entry.OldValue != "1" || entry.NewValue == nil || *entry.NewValue != "3" {
		t.Fatalf("unexpected relation log: %+v", entry)
	}
	if len(res.SyncedFields) != 0 {
		t.Fatalf("relations must not appear in synced fields: %v", res.SyncedFields)
	}
}

func TestEngine_AttachmentsSkipFailedCopies(t *testing.T) {
	t.Parallel()

	e := newEnv()
	ctx := context.Background()
	oldContract := testContractID
	e.attachments.rows = []*attachment.Attachment{
		{ID: "a1", OwnerType: attachment.OwnerTypeProfile, OwnerID: testPersonID, Category: attachment.CategoryDocument, FileName: "cv.pdf", StoragePath: "profile/p/cv.pdf"},
		{ID: "a2", OwnerType: attachment.OwnerTypeProfile, OwnerID: testPersonID, Category: attachment.CategoryDocument, FileName: "gone.pdf", StoragePath: "profile/p/gone.pdf"},
		{ID: "a3", OwnerType: attachment.OwnerTypeProfile, OwnerID: testPersonID, Category: attachment.CategoryDocument, FileName: "id.pdf", StoragePath: "profile/p/id.pdf"},
		{ID: "old", OwnerType: attachment.OwnerTypeEmployee, OwnerID: testEmployeeID, Category: attachment.CategoryDocument, StoragePath: "employee/e/old.pdf", SourceType: attachment.SourceSynced, SourceContractID: &oldContract},
		{ID: "own", OwnerType: attachment.OwnerTypeEmployee, OwnerID: testEmployeeID, Category: attachment.CategoryDocument, StoragePath: "employee/e/own.pdf", SourceType: attachment.SourceUploaded},
	}
	e.storage.missing["profile/p/gone.pdf"] = true

	res, err := e.engine.Run(ctx, e.plan(t, synclog.DirectionPersonToCompany, Scope{Attachments: []attachment.Category{attachment.CategoryDocument}}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.CopiedAttachments != 2 {
		t.Fatalf("expected 2 copies, got %d", res.CopiedAttachments)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].AttachmentID != "a2" || !errors.Is(res.Skipped[0].Err, ErrFileCopyFailed) {
		t.Fatalf("unexpected skipped files: %+v", res.Skipped)
	}
	if len(res.StaleFiles) != 1 || res.StaleFiles[0] != "employee/e/old.pdf" {
		t.Fatalf("unexpected stale files: %v", res.StaleFiles)
	}

	synced, _ := e.attachments.ListSynced(ctx, testContractID, attachment.CategoryDocument)
	if len(synced) != 2 {
		t.Fatalf("expected 2 synced rows, got %d", len(synced))
	}
	for _, a := range synced {
		if !a.DeletableOnTermination || a.SourceAttachmentID == nil || *a.SourceAttachmentID == "a2" {
			t.Errorf("unexpected synced row: %+v", a)
		}
	}
	own, _ := e.attachments.ListByOwner(ctx, attachment.OwnerTypeEmployee, testEmployeeID, attachment.CategoryDocument)
	foundOwn := false
	for _, a := range own {
		if a.ID == "own" {
			foundOwn = true
		}
	}
	if !foundOwn {
		t.Fatal("uploaded company attachment must be untouched")
	}

	if len(e.logs.entries) != 1 || e.logs.entries[0].EntityType != "document" || *e.logs.entries[0].NewValue != "2" {
		t.Fatalf("unexpected attachment log: %+v", e.logs.entries)
	}
}
