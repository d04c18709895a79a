// Package storage defines shared persistence contracts for feastly stores.
package storage

import "errors"

// ErrNotFound indicates a record does not exist in storage.
var ErrNotFound = errors.New("storage: record not found")
