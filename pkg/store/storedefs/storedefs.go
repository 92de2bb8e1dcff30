// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

// ErrNotFound is the error returned by Get when there is no entry for a key.
var ErrNotFound = errors.New("no entry for key")

// Store is a content-addressed blob store. Keys are hex-encoded content
// hashes; an entry is never modified once written, so Put may skip writing a
// key that already exists. An entry found to be damaged is removed with Delete
// and written again.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	// Delete removes the entry of key. Deleting a missing key is not an error.
	Delete(key string) error
	Close() error
}
