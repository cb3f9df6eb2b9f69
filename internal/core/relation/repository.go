package relation

import (
	"context"
	"fmt"
)

// Repository は所有者単位で関連データ行を保持します。
type Repository[T any] interface {
	List(ctx context.Context, ownerID string) ([]T, error)
	// ReplaceAll は ownerID の行をすべて rows に置き換え、挿入件数を返します。
	ReplaceAll(ctx context.Context, ownerID string, rows []T) (int, error)
	DeleteAll(ctx context.Context, ownerID string) (int, error)
}

// Set は片側 (個人または社員) の全関連データのリポジトリです。
type Set struct {
	Education   Repository[Education]
	Career      Repository[Career]
	Certificate Repository[Certificate]
	Language    Repository[Language]
	Family      Repository[FamilyMember]
}

// CopyResult は 1 種類分の置き換え結果です。
type CopyResult struct {
	Kind     Kind
	Previous int
	Inserted int
}

// Copy は src の srcOwner の行で dst の dstOwner の行を置き換えます。
func Copy(ctx context.Context, kind Kind, src, dst Set, srcOwner, dstOwner string) (CopyResult, error) {
	switch kind {
	case KindEducation:
		return replace(ctx, kind, src.Education, dst.Education, srcOwner, dstOwner)
	case KindCareer:
		return replace(ctx, kind, src.Career, dst.Career, srcOwner, dstOwner)
	case KindCertificate:
		return replace(ctx, kind, src.Certificate, dst.Certificate, srcOwner, dstOwner)
	case KindLanguage:
		return replace(ctx, kind, src.Language, dst.Language, srcOwner, dstOwner)
	case KindFamily:
		return replace(ctx, kind, src.Family, dst.Family, srcOwner, dstOwner)
	default:
		return CopyResult{}, fmt.Errorf("relation: unknown kind %q", kind)
	}
}

func replace[T Row[T]](ctx context.Context, kind Kind, src, dst Repository[T], srcOwner, dstOwner string) (CopyResult, error) {
	rows, err := src.List(ctx, srcOwner)
	if err != nil {
		return CopyResult{}, fmt.Errorf("relation: list %s: %w", kind, err)
	}
	previous, err := dst.List(ctx, dstOwner)
	if err != nil {
		return CopyResult{}, fmt.Errorf("relation: list %s: %w", kind, err)
	}

	rebound := make([]T, 0, len(rows))
	for i, row := range rows {
		rebound = append(rebound, row.Rebind(dstOwner, i))
	}

	inserted, err := dst.ReplaceAll(ctx, dstOwner, rebound)
	if err != nil {
		return CopyResult{}, fmt.Errorf("relation: replace %s: %w", kind, err)
	}
	return CopyResult{Kind: kind, Previous: len(previous), Inserted: inserted}, nil
}

// Snapshot は ownerID の全関連データを種類別に返します。
func (s Set) Snapshot(ctx context.Context, ownerID string) (map[Kind]any, error) {
	out := make(map[Kind]any, len(AllKinds))

	education, err := s.Education.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out[KindEducation] = education

	career, err := s.Career.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out[KindCareer] = career

	certificates, err := s.Certificate.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out[KindCertificate] = certificates

	languages, err := s.Language.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out[KindLanguage] = languages

	family, err := s.Family.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out[KindFamily] = family

	return out, nil
}
