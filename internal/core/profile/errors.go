package profile

import "errors"

var (
	// ErrProfileNotFound はプロフィールが存在しない場合に返却されます。
	ErrProfileNotFound = errors.New("profile: not found")
	// ErrInvalidName は名前が不正な場合に返却されます。
	ErrInvalidName = errors.New("profile: invalid name")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("profile: invalid email")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("profile: invalid id")
	// ErrPermissionDenied は本人以外が更新しようとした場合に返却されます。
	ErrPermissionDenied = errors.New("profile: permission denied")
)
