package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/hrlink/internal/core/termination"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestScanSnapshot_DecodesDocument(t *testing.T) {
	t.Parallel()

	until := time.Date(2029, 5, 1, 0, 0, 0, 0, time.UTC)

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 8 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "snap-1"
		*(dest[1].(*string)) = "contract-1"
		*(dest[2].(*string)) = "employee-1"
		*(dest[5].(*[]byte)) = []byte(`{"employee_number":"EMP-0001","fields":{"name":"Kim"},"relations":{"education":[]},"attachments":[],"terminated_at":"2026-05-01T00:00:00Z"}`)
		*(dest[6].(*time.Time)) = until
		return nil
	}}

	s, err := scanSnapshot(row)
	if err != nil {
		t.Fatalf("scanSnapshot returned error: %v", err)
	}
	if s.Document.EmployeeNumber != "EMP-0001" || s.Document.Fields["name"] != "Kim" {
		t.Fatalf("unexpected document %+v", s.Document)
	}
	if !s.RetentionUntil.Equal(until) {
		t.Fatalf("unexpected retention %v", s.RetentionUntil)
	}
}

func TestScanSnapshot_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanSnapshot(row); !errors.Is(err, termination.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotRepository_DeleteByContractID_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM termination_snapshots WHERE contract_id = $1`)).
		WithArgs("contract-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = NewSnapshotRepository(mock).DeleteByContractID(context.Background(), "contract-1")
	if !errors.Is(err, termination.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
