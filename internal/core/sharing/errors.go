package sharing

import "errors"

var (
	// ErrConfigNotFound は共有設定が存在しない場合に返却されます。
	ErrConfigNotFound = errors.New("sharing: config not found")
	// ErrConfigAlreadyExists は同じ契約の共有設定が既に存在する場合に返却されます。
	ErrConfigAlreadyExists = errors.New("sharing: config already exists")
)
