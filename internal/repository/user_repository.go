package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taman-digital/internal/domain"
	"taman-digital/internal/store"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSelfFollow         = errors.New("cannot follow yourself")
)

// DefaultSessionTTL is how long a session stays valid when no TTL is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

const maxUsernameAttempts = 10

var whitespace = regexp.MustCompile(`\s+`)

// Registration carries the fields a new account is created with.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PenName  string `json:"penName"`
	Bio      string `json:"bio"`
}

// ProviderProfile is the identity asserted by a verified provider credential.
type ProviderProfile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// UserOption configures a KVUserRepository.
type UserOption func(*KVUserRepository)

// WithSessionTTL sets the session lifetime.
func WithSessionTTL(d time.Duration) UserOption {
	return func(r *KVUserRepository) {
		if d > 0 {
			r.sessionTTL = d
		}
	}
}

// WithUserClock overrides the clock used for sessions.
func WithUserClock(now func() time.Time) UserOption {
	return func(r *KVUserRepository) { r.now = now }
}

// WithBcryptCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) UserOption {
	return func(r *KVUserRepository) { r.cost = cost }
}

// WithUsernameHold keeps usernames for which held reports true from being
// registered again, such as the name of a deleted account whose posts are
// still in the trash.
func WithUsernameHold(held func(ctx context.Context, username string) (bool, error)) UserOption {
	return func(r *KVUserRepository) { r.held = held }
}

// KVUserRepository implements UserRepository on the users collection, with
// one store key per session and a session index per user.
type KVUserRepository struct {
	kv         store.KV
	now        func() time.Time
	sessionTTL time.Duration
	cost       int
	held       func(ctx context.Context, username string) (bool, error)

	mu sync.Mutex
}

// NewKVUserRepository creates a new KVUserRepository.
func NewKVUserRepository(kv store.KV, opts ...UserOption) *KVUserRepository {
	r := &KVUserRepository{
		kv:         kv,
		now:        time.Now,
		sessionTTL: DefaultSessionTTL,
		cost:       bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *KVUserRepository) load(ctx context.Context) ([]domain.User, error) {
	users, _, err := loadCollection[domain.User](ctx, r.kv, store.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

func (r *KVUserRepository) persist(ctx context.Context, users []domain.User) error {
	return storeCollection(ctx, r.kv, store.KeyUsers, users)
}

// Register creates an account with a bcrypt password hash. Field presence is
// checked by the caller; uniqueness of username and email is checked here.
func (r *KVUserRepository) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	taken, err := r.taken(ctx, users, reg.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	if reg.Email != "" && findEmail(users, reg.Email) >= 0 {
		return nil, ErrEmailTaken
	}

	user := domain.User{
		Username:     reg.Username,
		PasswordHash: string(hash),
		Name:         reg.Name,
		Email:        reg.Email,
		PenName:      reg.PenName,
		Bio:          reg.Bio,
	}
	user.Normalize()
	users = append(users, user)
	if err := r.persist(ctx, users); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	return &user, nil
}

// Authenticate matches identifier against username or email and checks the
// password. Accounts linked to a provider have no hash and never match.
func (r *KVUserRepository) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		u := &users[i]
		if u.Username != identifier && (u.Email == "" || u.Email != identifier) {
			continue
		}
		if u.PasswordHash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
			return u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// LoginWithProvider returns the account linked to the provider subject,
// creating one with a username derived from the display name on first use.
// An email that already belongs to another account is never linked.
func (r *KVUserRepository) LoginWithProvider(ctx context.Context, profile ProviderProfile) (*domain.User, error) {
	if profile.Subject == "" || profile.Email == "" {
		return nil, ErrInvalidCredentials
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := findSubject(users, profile.Subject); i >= 0 {
		return &users[i], nil
	}
	if i := findEmail(users, profile.Email); i >= 0 {
		u := &users[i]
		// Provider accounts stored before subjects were recorded have neither
		// a password nor a subject; they are claimed by their email once.
		if u.PasswordHash != "" || u.ProviderSubject != "" {
			return nil, ErrEmailTaken
		}
		u.ProviderSubject = profile.Subject
		if err := r.persist(ctx, users); err != nil {
			return nil, fmt.Errorf("link provider user: %w", err)
		}
		return u, nil
	}

	base := whitespace.ReplaceAllString(strings.ToLower(profile.Name), "")
	if base == "" {
		base = "penulis"
	}
	username := base
	for attempt := 0; ; attempt++ {
		taken, err := r.taken(ctx, users, username)
		if err != nil {
			return nil, err
		}
		if !taken {
			break
		}
		if attempt >= maxUsernameAttempts {
			return nil, ErrUsernameTaken
		}
		username = fmt.Sprintf("%s%d", base, rand.IntN(1000))
	}

	user := domain.User{
		Username:        username,
		ProviderSubject: profile.Subject,
		Name:            profile.Name,
		Email:           profile.Email,
		ProfilePicture:  profile.Picture,
	}
	user.Normalize()
	users = append(users, user)
	if err := r.persist(ctx, users); err != nil {
		return nil, fmt.Errorf("register provider user: %w", err)
	}
	return &user, nil
}

// taken reports whether username belongs to an account or is held.
func (r *KVUserRepository) taken(ctx context.Context, users []domain.User, username string) (bool, error) {
	if findUser(users, username) >= 0 {
		return true, nil
	}
	if r.held == nil {
		return false, nil
	}
	held, err := r.held(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check username hold: %w", err)
	}
	return held, nil
}

// Get returns the user. Returns nil if not found.
func (r *KVUserRepository) Get(ctx context.Context, username string) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := findUser(users, username); i >= 0 {
		return &users[i], nil
	}
	return nil, nil
}

// Search matches query against name, username and pen name, case-insensitively.
// An empty query returns every user.
func (r *KVUserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return users, nil
	}

	q := strings.ToLower(query)
	result := make([]domain.User, 0)
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.PenName), q) {
			result = append(result, u)
		}
	}
	return result, nil
}

// UpdateProfile overwrites the editable profile of an existing user. The
// password hash and follow lists always come from the stored record.
// Returns nil if not found.
func (r *KVUserRepository) UpdateProfile(ctx context.Context, updated domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findUser(users, updated.Username)
	if i < 0 {
		return nil, nil
	}
	if updated.Email != "" {
		if j := findEmail(users, updated.Email); j >= 0 && j != i {
			return nil, ErrEmailTaken
		}
	}

	existing := users[i]
	updated.PasswordHash = existing.PasswordHash
	updated.ProviderSubject = existing.ProviderSubject
	updated.Followers = existing.Followers
	updated.Following = existing.Following
	if updated.IsPublic == nil {
		updated.IsPublic = existing.IsPublic
	}
	if updated.ShowBio == nil {
		updated.ShowBio = existing.ShowBio
	}
	if updated.ShowStats == nil {
		updated.ShowStats = existing.ShowStats
	}
	updated.Normalize()
	users[i] = updated

	if err := r.persist(ctx, users); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &updated, nil
}

// ToggleFollow follows target if follower does not follow it yet, otherwise
// unfollows. Both edges change together. Returns true if now following.
func (r *KVUserRepository) ToggleFollow(ctx context.Context, follower, target string) (bool, error) {
	if follower == target {
		return false, ErrSelfFollow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	fi, ti := findUser(users, follower), findUser(users, target)
	if fi < 0 || ti < 0 {
		return false, ErrUserNotFound
	}

	following := users[fi].IsFollowing(target)
	if following {
		users[fi].Following = without(users[fi].Following, target)
		users[ti].Followers = without(users[ti].Followers, follower)
	} else {
		users[fi].Following = append(users[fi].Following, target)
		users[ti].Followers = append(users[ti].Followers, follower)
	}

	if err := r.persist(ctx, users); err != nil {
		return false, fmt.Errorf("toggle follow: %w", err)
	}
	return !following, nil
}

// Delete removes the user and every follow edge pointing at it.
// Returns false if not found.
func (r *KVUserRepository) Delete(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	i := findUser(users, username)
	if i < 0 {
		return false, nil
	}
	users = append(users[:i], users[i+1:]...)
	for j := range users {
		users[j].Followers = without(users[j].Followers, username)
		users[j].Following = without(users[j].Following, username)
	}

	if err := r.persist(ctx, users); err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	if err := r.endAllSessions(ctx, username); err != nil {
		return true, err
	}
	return true, nil
}

// CreateSession starts a session for username and records it in the
// user's session index.
func (r *KVUserRepository) CreateSession(ctx context.Context, username string) (*domain.Session, error) {
	now := r.now()
	sess := domain.Session{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(r.sessionTTL),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Set(ctx, store.KeySessionPrefix+sess.ID, data); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	ids, err := r.sessionIndex(ctx, username)
	if err != nil {
		return nil, err
	}
	live := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if _, err := r.kv.Get(ctx, store.KeySessionPrefix+id); err == nil {
			live = append(live, id)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get session: %w", err)
		}
	}
	live = append(live, sess.ID)
	if err := r.storeSessionIndex(ctx, username, live); err != nil {
		return nil, err
	}
	return &sess, nil
}

// ResolveSession returns the live session with id. Returns nil if it does not
// exist, has expired or belongs to an account that no longer exists; such
// sessions are removed.
func (r *KVUserRepository) ResolveSession(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, nil
	}
	data, err := r.kv.Get(ctx, store.KeySessionPrefix+id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.Expired(r.now()) {
		return nil, r.EndSession(ctx, id)
	}
	user, err := r.Get(ctx, sess.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, r.EndSession(ctx, id)
	}
	return &sess, nil
}

// EndSession removes the session. Ending an unknown session is not an error.
// The user's session index is pruned when the session is next created.
func (r *KVUserRepository) EndSession(ctx context.Context, id string) error {
	if err := r.kv.Delete(ctx, store.KeySessionPrefix+id); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// endAllSessions removes every indexed session of username. Callers hold r.mu.
func (r *KVUserRepository) endAllSessions(ctx context.Context, username string) error {
	ids, err := r.sessionIndex(ctx, username)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.EndSession(ctx, id); err != nil {
			return err
		}
	}
	if err := r.kv.Delete(ctx, store.KeyUserSessionsPrefix+username); err != nil {
		return fmt.Errorf("delete session index: %w", err)
	}
	return nil
}

func (r *KVUserRepository) sessionIndex(ctx context.Context, username string) ([]string, error) {
	ids, _, err := loadCollection[string](ctx, r.kv, store.KeyUserSessionsPrefix+username)
	if err != nil {
		return nil, fmt.Errorf("load session index: %w", err)
	}
	return ids, nil
}

func (r *KVUserRepository) storeSessionIndex(ctx context.Context, username string, ids []string) error {
	if err := storeCollection(ctx, r.kv, store.KeyUserSessionsPrefix+username, ids); err != nil {
		return fmt.Errorf("store session index: %w", err)
	}
	return nil
}

func findUser(users []domain.User, username string) int {
	for i := range users {
		if users[i].Username == username {
			return i
		}
	}
	return -1
}

func findSubject(users []domain.User, subject string) int {
	for i := range users {
		if users[i].ProviderSubject != "" && users[i].ProviderSubject == subject {
			return i
		}
	}
	return -1
}

func findEmail(users []domain.User, email string) int {
	for i := range users {
		if users[i].Email != "" && users[i].Email == email {
			return i
		}
	}
	return -1
}

func without(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
