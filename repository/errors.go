package repository

import "errors"

// ErrDuplicateKey is returned when a facet mutation would collide with
// another facet's normalized key. Callers surface it as a conflict and
// must not apply the change.
var ErrDuplicateKey = errors.New("facet with this normalized key already exists")
