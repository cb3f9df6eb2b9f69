package termination

import "errors"

// ErrSnapshotNotFound はスナップショットが存在しない場合に返却されます。
var ErrSnapshotNotFound = errors.New("termination: snapshot not found")
