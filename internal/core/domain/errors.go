package domain

import "errors"

// ErrDuplicateKey is returned by repositories when an insert violates a
// uniqueness constraint. Callers decide whether that means a duplicate
// merchant registration or a transaction-ID collision worth retrying.
var ErrDuplicateKey = errors.New("duplicate key")
