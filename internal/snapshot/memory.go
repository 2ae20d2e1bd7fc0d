package snapshot

import (
	"context"
	"sync"
	"time"

	"taman-digital/internal/domain"
)

// Memory implements Cache in process memory. Snapshots live until the scope
// is cleared, its TTL passes, or the process exits.
type Memory struct {
	opts options

	mu     sync.Mutex
	scopes map[string]*memoryScope
}

type memoryScope struct {
	keys    map[string][]domain.DraftSnapshot
	expires time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...Option) *Memory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{
		opts:   o,
		scopes: make(map[string]*memoryScope),
	}
}

// live returns the scope unless it has expired. Callers hold m.mu.
func (m *Memory) live(scope string, now time.Time) *memoryScope {
	s, ok := m.scopes[scope]
	if !ok {
		return nil
	}
	if m.expired(s, now) {
		delete(m.scopes, scope)
		return nil
	}
	return s
}

func (m *Memory) expired(s *memoryScope, now time.Time) bool {
	return m.opts.ttl > 0 && !now.Before(s.expires)
}

// sweep drops every expired scope. Callers hold m.mu.
func (m *Memory) sweep(now time.Time) {
	if m.opts.ttl == 0 {
		return
	}
	for id, s := range m.scopes {
		if m.expired(s, now) {
			delete(m.scopes, id)
		}
	}
}

func (m *Memory) Save(ctx context.Context, scope, key string, draft domain.Draft) (*domain.DraftSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.opts.now()
	snap := domain.DraftSnapshot{
		Key:       key,
		Draft:     cloneDraft(draft),
		Timestamp: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)
	s, ok := m.scopes[scope]
	if !ok {
		s = &memoryScope{keys: make(map[string][]domain.DraftSnapshot)}
		m.scopes[scope] = s
	}
	s.expires = now.Add(m.opts.ttl)

	list := append([]domain.DraftSnapshot{snap}, s.keys[key]...)
	if len(list) > m.opts.history {
		list = list[:m.opts.history]
	}
	s.keys[key] = list

	out := snap
	out.Draft = cloneDraft(snap.Draft)
	return &out, nil
}

func (m *Memory) Get(ctx context.Context, scope, key string) (*domain.DraftSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.live(scope, m.opts.now())
	if s == nil || len(s.keys[key]) == 0 {
		return nil, nil
	}
	out := s.keys[key][0]
	out.Draft = cloneDraft(out.Draft)
	return &out, nil
}

func (m *Memory) History(ctx context.Context, scope, key string) ([]domain.DraftSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var list []domain.DraftSnapshot
	if s := m.live(scope, m.opts.now()); s != nil {
		list = s.keys[key]
	}
	out := make([]domain.DraftSnapshot, len(list))
	for i, snap := range list {
		snap.Draft = cloneDraft(snap.Draft)
		out[i] = snap
	}
	return out, nil
}

func (m *Memory) Clear(ctx context.Context, scope, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.scopes[scope]; ok {
		delete(s.keys, key)
		if len(s.keys) == 0 {
			delete(m.scopes, scope)
		}
	}
	return nil
}

func (m *Memory) ClearScope(ctx context.Context, scope string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.scopes, scope)
	m.mu.Unlock()
	return nil
}

// Scopes returns the number of sessions currently holding snapshots.
func (m *Memory) Scopes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes)
}

func cloneDraft(d domain.Draft) domain.Draft {
	if d.Tags != nil {
		tags := make([]string, len(d.Tags))
		copy(tags, d.Tags)
		d.Tags = tags
	}
	return d
}
