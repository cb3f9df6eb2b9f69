package syncer

import "errors"

// ErrFileCopyFailed は添付ファイル 1 件の複製に失敗した場合の理由です。同期全体は中断しません。
var ErrFileCopyFailed = errors.New("syncer: file copy failed")
