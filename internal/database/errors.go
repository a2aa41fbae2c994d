package database

import "errors"

var (
	// ErrDuplicate is returned by repositories when an insert hits a unique
	// index. It is the authoritative duplicate signal; any pre-insert
	// existence check is only a fast path.
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotFound is returned by update/delete operations that matched no rows.
	ErrNotFound = errors.New("record not found")
)
