package s4_snapshot

import "errors"

var (
	// ErrNoSnapshots means the output directory holds no snapshot file
	ErrNoSnapshots = errors.New("no snapshot files")

	// ErrSnapshotNotFound means no file matches the requested date
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
