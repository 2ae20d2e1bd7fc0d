package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taman-digital/internal/domain"
	"taman-digital/internal/repository"
	"taman-digital/internal/service"
	"taman-digital/internal/snapshot"
	"taman-digital/internal/store"
	"taman-digital/internal/validator"
)

// clock is safe for the debounce goroutines that stamp snapshots.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	clock     *clock
	kv        *store.Memory
	posts     *repository.KVPostRepository
	users     *repository.KVUserRepository
	messages  *repository.KVMessageRepository
	snapshots *snapshot.Memory
	validator *validator.Validator
	content   *service.ContentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := newClock()
	kv := store.NewMemory()
	posts := repository.NewKVPostRepository(kv,
		repository.WithClock(c.Now),
		repository.WithLocation(time.UTC),
		repository.WithSeed(false),
	)
	f := &fixture{
		clock: c,
		kv:    kv,
		posts: posts,
		users: repository.NewKVUserRepository(kv,
			repository.WithUserClock(c.Now),
			repository.WithBcryptCost(bcrypt.MinCost),
			repository.WithUsernameHold(posts.HasPosts),
		),
		messages:  repository.NewKVMessageRepository(kv, c.Now),
		snapshots: snapshot.NewMemory(snapshot.WithClock(c.Now)),
		validator: validator.NewValidator(),
	}
	f.content = service.NewContentService(f.posts, f.snapshots, f.validator)
	return f
}

func (f *fixture) editor(generator service.TextGenerator, delay time.Duration) *service.EditorService {
	ed := service.NewEditorService(f.content, f.snapshots, generator, f.validator, delay)
	return ed
}

func session(username string) *domain.Session {
	return &domain.Session{ID: "sess-" + username, Username: username}
}

func draft(title, content string) domain.Draft {
	return domain.Draft{
		Title:   title,
		Content: content,
		Tags:    []string{},
		Status:  domain.StatusDraft,
	}
}

// gatedCache holds the first snapshot write until release is closed.
type gatedCache struct {
	snapshot.Cache
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedCache(c snapshot.Cache) *gatedCache {
	return &gatedCache{Cache: c, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedCache) Save(ctx context.Context, scope, key string, d domain.Draft) (*domain.DraftSnapshot, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.Cache.Save(ctx, scope, key, d)
}

// verifierFunc adapts a function to service.ProviderVerifier.
type verifierFunc func(ctx context.Context, credential string) (*repository.ProviderProfile, error)

func (f verifierFunc) Verify(ctx context.Context, credential string) (*repository.ProviderProfile, error) {
	return f(ctx, credential)
}

// tokens accepts exactly the credentials it maps to a profile.
func tokens(profiles map[string]repository.ProviderProfile) verifierFunc {
	return func(_ context.Context, credential string) (*repository.ProviderProfile, error) {
		p, ok := profiles[credential]
		if !ok {
			return nil, service.ErrInvalidCredentials
		}
		return &p, nil
	}
}
