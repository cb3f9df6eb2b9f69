package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrlink/internal/core/profile"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestScanProfile_CompanyMember(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 26 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "person-1"
		*(dest[1].(*string)) = string(profile.AccountTypeCompanyMember)
		companyID := "company-1"
		employeeID := "employee-1"
		*(dest[2].(**string)) = &companyID
		*(dest[3].(**string)) = &employeeID
		*(dest[4].(*string)) = "Kim"
		*(dest[9].(*string)) = "kim@example.com"
		return nil
	}}

	p, err := scanProfile(row)
	if err != nil {
		t.Fatalf("scanProfile returned error: %v", err)
	}

	linked, ok := p.LinkedEmployeeFor("company-1")
	if !ok || linked != "employee-1" {
		t.Fatalf("expected linked employee, got %q %v", linked, ok)
	}
	if p.Email != "kim@example.com" {
		t.Fatalf("unexpected email %q", p.Email)
	}
}

func TestScanProfile_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanProfile(row); !errors.Is(err, profile.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileRepository_Update_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE profiles`)).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.Update(context.Background(), &profile.Profile{PersonID: "person-1", Name: "Kim", UpdatedAt: time.Now().UTC()})
	if !errors.Is(err, profile.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslateProfilePgError(t *testing.T) {
	t.Parallel()

	if !errors.Is(translateProfilePgError(&pgconn.PgError{Code: invalidTextRepresentation}), profile.ErrInvalidID) {
		t.Fatal("expected invalid id mapping")
	}
}
