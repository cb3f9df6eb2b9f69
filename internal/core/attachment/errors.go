package attachment

import "errors"

var (
	// ErrAttachmentNotFound は添付ファイルが存在しない場合に返却されます。
	ErrAttachmentNotFound = errors.New("attachment: not found")
	// ErrInvalidPath は保存先の外を指すパスの場合に返却されます。
	ErrInvalidPath = errors.New("attachment: invalid storage path")
)
