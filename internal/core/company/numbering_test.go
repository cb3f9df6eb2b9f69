package company

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeCompanies map[string]*Company

func (f fakeCompanies) FindByID(_ context.Context, id string) (*Company, error) {
	c, ok := f[id]
	if !ok {
		return nil, ErrCompanyNotFound
	}
	return c, nil
}

type fakeSequences struct {
	values map[string]int64
}

func (f *fakeSequences) Next(_ context.Context, companyID string, scopeYear int) (int64, error) {
	key := fmt.Sprintf("%s/%d", companyID, scopeYear)
	f.values[key]++
	return f.values[key], nil
}

func TestNumberGenerator_Next(t *testing.T) {
	t.Parallel()

	companies := fakeCompanies{
		"co1": {ID: "co1", Name: "Default"},
		"co2": {ID: "co2", Name: "Custom", Numbering: &NumberingPolicy{Prefix: "hr", Digits: 6}},
	}
	seqs := &fakeSequences{values: map[string]int64{}}
	clock := &stubClock{now: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)}

	gen, err := NewNumberGenerator(companies, seqs, NumberingPolicy{Prefix: "EMP", Digits: 4, IncludeYear: true}, clock)
	if err != nil {
		t.Fatalf("NewNumberGenerator returned error: %v", err)
	}

	tests := []struct {
		companyID string
		want      string
	}{
		{companyID: "co1", want: "EMP-2026-0001"},
		{companyID: "co1", want: "EMP-2026-0002"},
		{companyID: "co2", want: "HR-000001"},
	}
	for _, tt := range tests {
		got, err := gen.Next(context.Background(), tt.companyID)
		if err != nil {
			t.Fatalf("Next(%s) returned error: %v", tt.companyID, err)
		}
		if got != tt.want {
			t.Errorf("Next(%s) = %s, want %s", tt.companyID, got, tt.want)
		}
	}

	clock.now = time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)
	got, err := gen.Next(context.Background(), "co1")
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if got != "EMP-2027-0001" {
		t.Errorf("expected sequence to restart per year, got %s", got)
	}
}

func TestNumberGenerator_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewNumberGenerator(fakeCompanies{}, &fakeSequences{}, NumberingPolicy{Prefix: "E-", Digits: 4}, nil); !errors.Is(err, ErrInvalidNumberingPolicy) {
		t.Fatalf("expected ErrInvalidNumberingPolicy, got %v", err)
	}

	gen, err := NewNumberGenerator(fakeCompanies{}, &fakeSequences{values: map[string]int64{}}, NumberingPolicy{Prefix: "EMP", Digits: 4}, nil)
	if err != nil {
		t.Fatalf("NewNumberGenerator returned error: %v", err)
	}
	if _, err := gen.Next(context.Background(), "missing"); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
	if _, err := gen.Next(context.Background(), " "); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestNumberingPolicy_FormatOverflow(t *testing.T) {
	t.Parallel()

	p := NumberingPolicy{Prefix: "EMP", Digits: 2}
	if got := p.Format(2026, 123); got != "EMP-123" {
		t.Fatalf("unexpected overflow format: %s", got)
	}
}
