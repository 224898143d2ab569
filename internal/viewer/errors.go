package viewer

import "errors"

var (
	// ErrCodeNotFound is returned when a code is not in the snapshot
	ErrCodeNotFound = errors.New("code not found in snapshot")
	// ErrSectorNotFound is returned when a sector has no rows
	ErrSectorNotFound = errors.New("sector not found in snapshot")
)
