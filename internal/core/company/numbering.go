package company

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const maxDigits = 12

var prefixPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_]*$`)

// Validate は採番ルールを検証し、正規化したコピーを返します。
func (p NumberingPolicy) Validate() (NumberingPolicy, error) {
	p.Prefix = strings.ToUpper(strings.TrimSpace(p.Prefix))
	if !prefixPattern.MatchString(p.Prefix) {
		return p, fmt.Errorf("prefix %q: %w", p.Prefix, ErrInvalidNumberingPolicy)
	}
	if p.Digits <= 0 || p.Digits > maxDigits {
		return p, fmt.Errorf("digits %d: %w", p.Digits, ErrInvalidNumberingPolicy)
	}
	return p, nil
}

// Format は連番から社員番号を組み立てます。桁数を超えた連番はそのまま出力します。
func (p NumberingPolicy) Format(year int, seq int64) string {
	if p.IncludeYear {
		return fmt.Sprintf("%s-%04d-%0*d", p.Prefix, year, p.Digits, seq)
	}
	return fmt.Sprintf("%s-%0*d", p.Prefix, p.Digits, seq)
}

// NumberGenerator は会社ごとに一意な社員番号を払い出します。
type NumberGenerator struct {
	companies Repository
	sequences SequenceRepository
	fallback  NumberingPolicy
	clock     Clock
}

// NewNumberGenerator は NumberGenerator を生成します。fallback は会社に採番ルールが無い場合に使用します。
func NewNumberGenerator(companies Repository, sequences SequenceRepository, fallback NumberingPolicy, clock Clock) (*NumberGenerator, error) {
	normalized, err := fallback.Validate()
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = realClock{}
	}
	return &NumberGenerator{companies: companies, sequences: sequences, fallback: normalized, clock: clock}, nil
}

// Next は companyID の次の社員番号を返します。呼び出し側のトランザクション内で実行してください。
func (g *NumberGenerator) Next(ctx context.Context, companyID string) (string, error) {
	if strings.TrimSpace(companyID) == "" {
		return "", fmt.Errorf("company_id: %w", ErrInvalidID)
	}

	c, err := g.companies.FindByID(ctx, companyID)
	if err != nil {
		return "", err
	}

	policy := g.fallback
	if c.Numbering != nil {
		policy, err = c.Numbering.Validate()
		if err != nil {
			return "", err
		}
	}

	year := g.clock.Now().UTC().Year()
	scope := 0
	if policy.IncludeYear {
		scope = year
	}

	seq, err := g.sequences.Next(ctx, companyID, scope)
	if err != nil {
		return "", fmt.Errorf("company: next sequence: %w", err)
	}
	return policy.Format(year, seq), nil
}
