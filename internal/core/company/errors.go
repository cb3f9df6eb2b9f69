package company

import "errors"

var (
	// ErrCompanyNotFound は会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("company: not found")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("company: invalid id")
	// ErrInvalidNumberingPolicy は採番ルールが不正な場合に返却されます。
	ErrInvalidNumberingPolicy = errors.New("company: invalid numbering policy")
)
