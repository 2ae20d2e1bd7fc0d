// Package snapshot keeps short, session-scoped histories of in-progress
// edits so a draft can be recovered after an accidental navigation or crash.
// Snapshots never replace the durable post record.
package snapshot

import (
	"context"
	"time"

	"taman-digital/internal/domain"
)

// Cache stores a bounded, newest-first history of draft snapshots per
// (scope, key). Scope is the session id; key is a post id or domain.NewDraftKey.
type Cache interface {
	// Save prepends a snapshot of draft and evicts entries beyond the history bound.
	Save(ctx context.Context, scope, key string, draft domain.Draft) (*domain.DraftSnapshot, error)
	// Get returns the most recent snapshot, or nil when there is none.
	Get(ctx context.Context, scope, key string) (*domain.DraftSnapshot, error)
	// History returns every retained snapshot, newest first.
	History(ctx context.Context, scope, key string) ([]domain.DraftSnapshot, error)
	// Clear drops all snapshots for key.
	Clear(ctx context.Context, scope, key string) error
	// ClearScope drops every snapshot of a session.
	ClearScope(ctx context.Context, scope string) error
}

// Option configures a cache backend.
type Option func(*options)

type options struct {
	history int
	ttl     time.Duration
	now     func() time.Time
}

func defaultOptions() options {
	return options{
		history: domain.DefaultSnapshotHistory,
		now:     time.Now,
	}
}

// WithHistory sets how many snapshots are kept per key.
func WithHistory(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.history = n
		}
	}
}

// WithClock overrides the clock used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithTTL expires a session's snapshots d after its last save. Zero keeps
// them until the scope is cleared. The Redis backend takes its TTL directly.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}
