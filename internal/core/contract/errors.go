package contract

import "errors"

var (
	// ErrContractNotFound は契約が存在しない場合に返却されます。
	ErrContractNotFound = errors.New("contract: not found")
	// ErrInvalidTransition は許可されていない状態遷移の場合に返却されます。詳細は *TransitionError を参照してください。
	ErrInvalidTransition = errors.New("contract: invalid transition")
	// ErrDuplicateActiveContract は同じ個人と会社の間に有効な契約が既に存在する場合に返却されます。
	ErrDuplicateActiveContract = errors.New("contract: active contract already exists")
	// ErrPendingRequestExists は同じ個人と会社の間に未処理の申請が既に存在する場合に返却されます。
	ErrPendingRequestExists = errors.New("contract: pending request already exists")
	// ErrPermissionDenied は操作者がその操作の当事者でない場合に返却されます。
	ErrPermissionDenied = errors.New("contract: permission denied")
	// ErrValidation は入力が不足または不正な場合に返却されます。
	ErrValidation = errors.New("contract: validation failed")
	// ErrContractNotActive は有効でない契約に対して同期や設定変更を行った場合に返却されます。
	ErrContractNotActive = errors.New("contract: not active")
)
