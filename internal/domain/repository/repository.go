package repository

import "errors"

// ErrNotFound is returned by repositories when no row matches the
// given identity. Services translate it into entity-specific errors.
var ErrNotFound = errors.New("not found")
