package repository_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taman-digital/internal/domain"
	"taman-digital/internal/repository"
	"taman-digital/internal/store"
)

func newUserRepo(kv store.KV, clock *fakeClock) *repository.KVUserRepository {
	return repository.NewKVUserRepository(kv,
		repository.WithBcryptCost(bcrypt.MinCost),
		repository.WithUserClock(clock.Now),
		repository.WithSessionTTL(time.Hour),
	)
}

func register(t *testing.T, repo *repository.KVUserRepository, username, email string) *domain.User {
	t.Helper()
	u, err := repo.Register(context.Background(), repository.Registration{
		Username: username,
		Password: "rahasia123",
		Name:     strings.ToUpper(username[:1]) + username[1:],
		Email:    email,
	})
	require.NoError(t, err)
	return u
}

func TestKVUserRepository_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password and fills defaults", func(t *testing.T) {
		repo := newUserRepo(store.NewMemory(), newClock())

		u := register(t, repo, "sari", "sari@example.com")
		assert.NotEqual(t, "rahasia123", u.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("rahasia123")))
		assert.Empty(t, u.Followers)
		assert.Empty(t, u.Following)
		require.NotNil(t, u.IsPublic)
		assert.True(t, *u.IsPublic)
	})

	t.Run("rejects duplicate username and email", func(t *testing.T) {
		repo := newUserRepo(store.NewMemory(), newClock())
		register(t, repo, "sari", "sari@example.com")

		_, err := repo.Register(ctx, repository.Registration{Username: "sari", Password: "x", Name: "X"})
		assert.ErrorIs(t, err, repository.ErrUsernameTaken)

		_, err = repo.Register(ctx, repository.Registration{Username: "lain", Password: "x", Name: "X", Email: "sari@example.com"})
		assert.ErrorIs(t, err, repository.ErrEmailTaken)
	})
}

func TestKVUserRepository_Authenticate(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(store.NewMemory(), newClock())
	register(t, repo, "sari", "sari@example.com")

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{"by username", "sari", "rahasia123", nil},
		{"by email", "sari@example.com", "rahasia123", nil},
		{"wrong password", "sari", "salah", repository.ErrInvalidCredentials},
		{"unknown user", "budi", "rahasia123", repository.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := repo.Authenticate(ctx, tt.identifier, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "sari", u.Username)
		})
	}
}

func TestKVUserRepository_LoginWithProvider(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	repo := newUserRepo(kv, newClock())
	register(t, repo, "sari", "sari@example.com")

	t.Run("new subject registers with derived username", func(t *testing.T) {
		u, err := repo.LoginWithProvider(ctx, repository.ProviderProfile{Subject: "g-dewi", Email: "dewi@example.com", Name: "Dewi Lestari", Picture: "https://img/dewi.png"})
		require.NoError(t, err)
		assert.Equal(t, "dewilestari", u.Username)
		assert.Equal(t, "g-dewi", u.ProviderSubject)
		assert.Equal(t, "https://img/dewi.png", u.ProfilePicture)
		assert.Empty(t, u.PasswordHash)
	})

	t.Run("known subject logs in even after an email change", func(t *testing.T) {
		_, err := repo.UpdateProfile(ctx, domain.User{Username: "dewilestari", Name: "Dewi", Email: "dewi.baru@example.com"})
		require.NoError(t, err)

		u, err := repo.LoginWithProvider(ctx, repository.ProviderProfile{Subject: "g-dewi", Email: "dewi@example.com", Name: "Dewi Lestari"})
		require.NoError(t, err)
		assert.Equal(t, "dewilestari", u.Username)
		assert.Equal(t, "g-dewi", u.ProviderSubject, "profile updates keep the subject")
	})

	t.Run("email of another account is never linked", func(t *testing.T) {
		tests := []struct {
			name    string
			profile repository.ProviderProfile
		}{
			{"password account", repository.ProviderProfile{Subject: "g-attacker", Email: "sari@example.com", Name: "Sari"}},
			{"other provider account", repository.ProviderProfile{Subject: "g-other", Email: "dewi.baru@example.com", Name: "Dewi"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				u, err := repo.LoginWithProvider(ctx, tt.profile)
				assert.ErrorIs(t, err, repository.ErrEmailTaken)
				assert.Nil(t, u)
			})
		}
	})

	t.Run("provider account without a stored subject is claimed once", func(t *testing.T) {
		users, err := repo.Search(ctx, "")
		require.NoError(t, err)
		users = append(users, domain.User{Username: "lama", Name: "Lama", Email: "lama@example.com"})
		data, err := json.Marshal(users)
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, store.KeyUsers, data))

		u, err := repo.LoginWithProvider(ctx, repository.ProviderProfile{Subject: "g-lama", Email: "lama@example.com", Name: "Lama"})
		require.NoError(t, err)
		assert.Equal(t, "lama", u.Username)

		_, err = repo.LoginWithProvider(ctx, repository.ProviderProfile{Subject: "g-lain", Email: "lama@example.com", Name: "Lama"})
		assert.ErrorIs(t, err, repository.ErrEmailTaken)
	})

	t.Run("taken username gets a numeric suffix", func(t *testing.T) {
		u, err := repo.LoginWithProvider(ctx, repository.ProviderProfile{Subject: "g-sari2", Email: "sari2@example.com", Name: "Sari"})
		require.NoError(t, err)
		assert.NotEqual(t, "sari", u.Username)
		assert.True(t, strings.HasPrefix(u.Username, "sari"))
	})

	t.Run("requires subject and email", func(t *testing.T) {
		_, err := repo.LoginWithProvider(ctx, repository.ProviderProfile{Email: "x@example.com", Name: "X"})
		assert.ErrorIs(t, err, repository.ErrInvalidCredentials)

		_, err = repo.LoginWithProvider(ctx, repository.ProviderProfile{Subject: "g-x", Name: "X"})
		assert.ErrorIs(t, err, repository.ErrInvalidCredentials)
	})

	t.Run("provider accounts cannot log in with a password", func(t *testing.T) {
		_, err := repo.Authenticate(ctx, "dewi.baru@example.com", "")
		assert.ErrorIs(t, err, repository.ErrInvalidCredentials)
	})
}

func TestKVUserRepository_UsernameHold(t *testing.T) {
	ctx := context.Background()
	held := map[string]bool{"sari": true}
	repo := repository.NewKVUserRepository(store.NewMemory(),
		repository.WithBcryptCost(bcrypt.MinCost),
		repository.WithUsernameHold(func(_ context.Context, username string) (bool, error) {
			return held[username], nil
		}),
	)

	_, err := repo.Register(ctx, repository.Registration{Username: "sari", Password: "rahasia123", Name: "Sari"})
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)

	u, err := repo.LoginWithProvider(ctx, repository.ProviderProfile{Subject: "g-1", Email: "sari@example.com", Name: "Sari"})
	require.NoError(t, err)
	assert.NotEqual(t, "sari", u.Username, "provider sign-up skips held names")

	held["sari"] = false
	register(t, repo, "sari", "")
}

func TestKVUserRepository_SearchAndProfile(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(store.NewMemory(), newClock())
	register(t, repo, "sari", "sari@example.com")
	register(t, repo, "budi", "budi@example.com")

	found, err := repo.Search(ctx, "SAR")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "sari", found[0].Username)

	all, err := repo.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.ToggleFollow(ctx, "budi", "sari")
	require.NoError(t, err)

	updated, err := repo.UpdateProfile(ctx, domain.User{Username: "sari", Name: "Sari W.", PenName: "Senja", Email: "sari@example.com"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Senja", updated.PenName)
	assert.Equal(t, []string{"budi"}, updated.Followers, "follow lists are kept")
	assert.NotEmpty(t, updated.PasswordHash)

	byPen, err := repo.Search(ctx, "senja")
	require.NoError(t, err)
	assert.Len(t, byPen, 1)

	_, err = repo.UpdateProfile(ctx, domain.User{Username: "sari", Email: "budi@example.com"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	missing, err := repo.UpdateProfile(ctx, domain.User{Username: "nobody"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestKVUserRepository_ToggleFollow(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(store.NewMemory(), newClock())
	register(t, repo, "sari", "")
	register(t, repo, "budi", "")

	following, err := repo.ToggleFollow(ctx, "sari", "budi")
	require.NoError(t, err)
	assert.True(t, following)

	sari, err := repo.Get(ctx, "sari")
	require.NoError(t, err)
	budi, err := repo.Get(ctx, "budi")
	require.NoError(t, err)
	assert.Equal(t, []string{"budi"}, sari.Following)
	assert.Equal(t, []string{"sari"}, budi.Followers)

	following, err = repo.ToggleFollow(ctx, "sari", "budi")
	require.NoError(t, err)
	assert.False(t, following)

	sari, err = repo.Get(ctx, "sari")
	require.NoError(t, err)
	budi, err = repo.Get(ctx, "budi")
	require.NoError(t, err)
	assert.Empty(t, sari.Following)
	assert.Empty(t, budi.Followers)

	_, err = repo.ToggleFollow(ctx, "sari", "sari")
	assert.ErrorIs(t, err, repository.ErrSelfFollow)

	_, err = repo.ToggleFollow(ctx, "sari", "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestKVUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(store.NewMemory(), newClock())
	register(t, repo, "sari", "")
	register(t, repo, "budi", "")
	_, err := repo.ToggleFollow(ctx, "budi", "sari")
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "sari")
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := repo.Get(ctx, "sari")
	require.NoError(t, err)
	assert.Nil(t, gone)

	budi, err := repo.Get(ctx, "budi")
	require.NoError(t, err)
	assert.Empty(t, budi.Following)

	deleted, err = repo.Delete(ctx, "sari")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestKVUserRepository_Sessions(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	repo := newUserRepo(store.NewMemory(), clock)
	register(t, repo, "sari", "")
	register(t, repo, "budi", "")

	sess, err := repo.CreateSession(ctx, "sari")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.ExpiresAt.Equal(clock.Now().Add(time.Hour)))

	resolved, err := repo.ResolveSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "sari", resolved.Username)

	t.Run("unknown id", func(t *testing.T) {
		s, err := repo.ResolveSession(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("ended session", func(t *testing.T) {
		other, err := repo.CreateSession(ctx, "budi")
		require.NoError(t, err)
		require.NoError(t, repo.EndSession(ctx, other.ID))

		s, err := repo.ResolveSession(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("session of an account that no longer exists", func(t *testing.T) {
		orphan, err := repo.CreateSession(ctx, "hantu")
		require.NoError(t, err)

		s, err := repo.ResolveSession(ctx, orphan.ID)
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("expired session", func(t *testing.T) {
		clock.Advance(2 * time.Hour)

		s, err := repo.ResolveSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Nil(t, s)
	})
}

func TestKVUserRepository_DeleteEndsSessions(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	repo := newUserRepo(kv, newClock())
	register(t, repo, "sari", "")
	register(t, repo, "budi", "")

	var ids []string
	for i := 0; i < 3; i++ {
		sess, err := repo.CreateSession(ctx, "sari")
		require.NoError(t, err)
		ids = append(ids, sess.ID)
	}
	budi, err := repo.CreateSession(ctx, "budi")
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "sari")
	require.NoError(t, err)
	require.True(t, deleted)

	for _, id := range ids {
		_, err := kv.Get(ctx, store.KeySessionPrefix+id)
		assert.ErrorIs(t, err, store.ErrNotFound, id)
	}
	_, err = kv.Get(ctx, store.KeyUserSessionsPrefix+"sari")
	assert.ErrorIs(t, err, store.ErrNotFound)

	s, err := repo.ResolveSession(ctx, budi.ID)
	require.NoError(t, err)
	assert.NotNil(t, s, "other users keep their sessions")
}
