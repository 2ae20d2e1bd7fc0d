// Package store is the persistent key-value adapter every collection is read
// from and written through. Values are opaque serialized collections; there is
// no batching and no transaction spanning more than one key.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("store: key not found")

// Storage keys of the durable collections.
const (
	KeyPosts         = "taman_posts"
	KeyUsers         = "taman_users"
	KeyMessages      = "taman_messages"
	KeySessionPrefix = "taman_session:"
	// KeyUserSessionsPrefix indexes the session ids of one user.
	KeyUserSessionsPrefix = "taman_user_sessions:"
)

// KV is a durable key-value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
