package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/employee"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	hired := time.Date(2024, 1, 1, 15, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	createdAt := time.Now().UTC()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 32 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "company-1"
		*(dest[2].(*string)) = "person-1"
		contractID := "contract-1"
		*(dest[3].(**string)) = &contractID
		*(dest[4].(*string)) = "EMP-2024-0001"
		*(dest[5].(*string)) = string(employee.StatusActive)
		*(dest[8].(**time.Time)) = &hired
		*(dest[10].(*string)) = "Yamada"
		*(dest[16].(*string)) = "03-0000-0000"
		*(dest[30].(*time.Time)) = createdAt
		*(dest[31].(*time.Time)) = createdAt
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.Status != employee.StatusActive || emp.EmployeeNumber != "EMP-2024-0001" {
		t.Fatalf("unexpected employee %+v", emp)
	}
	if emp.ContractID == nil || *emp.ContractID != "contract-1" {
		t.Fatalf("unexpected contract id %+v", emp.ContractID)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if emp.HiredAt == nil || !emp.HiredAt.Equal(want) {
		t.Fatalf("expected hired date %v, got %+v", want, emp.HiredAt)
	}
	if emp.ResignedAt != nil {
		t.Fatalf("expected nil resigned date, got %v", emp.ResignedAt)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanEmployee(row); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: employeeNumberUniqueKey}
	if !errors.Is(translateEmployeePgError(dup), employee.ErrEmployeeNumberAlreadyExists) {
		t.Fatal("expected employee number exists mapping")
	}
	if !errors.Is(translateEmployeePgError(&pgconn.PgError{Code: invalidTextRepresentation}), employee.ErrInvalidID) {
		t.Fatal("expected invalid id mapping")
	}
	pkey := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_pkey"}
	if translateEmployeePgError(pkey) != pkey {
		t.Fatal("unexpected translation for primary key violation")
	}
}

func TestEmployeeRepository_ListByCompanyAndPerson_QueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE company_id = $1 AND person_id = $2`)).
		WithArgs("company-1", "person-1").
		WillReturnError(&pgconn.PgError{Code: invalidTextRepresentation})

	if _, err := repo.ListByCompanyAndPerson(context.Background(), "company-1", "person-1"); !errors.Is(err, employee.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNullableTime(t *testing.T) {
	t.Parallel()

	if nullableTime(nil) != nil {
		t.Fatal("expected nil for nil input")
	}

	in := time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC)
	got, ok := nullableTime(&in).(time.Time)
	if !ok {
		t.Fatal("expected time value")
	}
	if !got.Equal(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected truncated value %v", got)
	}
}
