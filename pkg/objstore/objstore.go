// Package objstore abstracts durable key-addressed object storage for job
// metadata, state, and artifacts.
//
// Backends implement a minimal byte-in/byte-out surface. Authentication
// uses SDK default credential chains - backends should not implement
// custom auth logic.
package objstore

import (
	"context"
	"errors"
	"fmt"
)

// Backend abstracts object storage operations.
//
// Implementations should:
//   - Treat keys as slash-separated paths
//   - Be safe for concurrent use
//   - Overwrite existing objects on Put
type Backend interface {
	// Put durably stores an object. The write must be atomic: readers
	// never observe a partially written object.
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// Get returns the full object body.
	// Returns ErrNotFound if the object does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all objects under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// URL returns a caller-resolvable locator for the object at key.
	URL(key string) string

	// Close releases any resources held by the backend.
	Close() error
}

// Sentinel errors for backend operations.
var (
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrAccessDenied indicates insufficient permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnavailable indicates the storage service is unavailable.
	ErrUnavailable = errors.New("storage unavailable")
)

// Error wraps backend-specific errors with context.
type Error struct {
	// Op is the operation that failed (e.g., "Put", "Get").
	Op string

	// Backend names the backend type (e.g., "s3", "file").
	Backend string

	// Key is the object key, if applicable.
	Key string

	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Backend, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates an object was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
