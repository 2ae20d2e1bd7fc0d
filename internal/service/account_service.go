package service

import (
	"context"
	"fmt"
	"log/slog"

	"taman-digital/internal/domain"
	"taman-digital/internal/logger"
	"taman-digital/internal/repository"
	"taman-digital/internal/snapshot"
	"taman-digital/internal/validator"
)

// AccountService handles registration, sessions, profiles and the follow graph.
type AccountService struct {
	users     repository.UserRepository
	posts     repository.PostRepository
	snapshots snapshot.Cache
	validator *validator.Validator
	provider  ProviderVerifier
}

// AccountOption configures an AccountService.
type AccountOption func(*AccountService)

// WithProviderVerifier enables sign-in with credentials checked by pv.
func WithProviderVerifier(pv ProviderVerifier) AccountOption {
	return func(s *AccountService) { s.provider = pv }
}

// NewAccountService creates a new AccountService.
func NewAccountService(users repository.UserRepository, posts repository.PostRepository, snapshots snapshot.Cache, v *validator.Validator, opts ...AccountOption) *AccountService {
	s := &AccountService{
		users:     users,
		posts:     posts,
		snapshots: snapshots,
		validator: v,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account and starts a session for it.
func (s *AccountService) Register(ctx context.Context, reg repository.Registration) (*domain.User, *domain.Session, error) {
	if err := s.validator.ValidateRegistration(&reg); err != nil {
		return nil, nil, err
	}
	user, err := s.users.Register(ctx, reg)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.users.CreateSession(ctx, user.Username)
	if err != nil {
		return nil, nil, err
	}
	logger.InfoContext(ctx, "User registered", slog.String("username", user.Username))
	public := user.Public()
	return &public, sess, nil
}

// Login authenticates by username or email and starts a session.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*domain.User, *domain.Session, error) {
	user, err := s.users.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.users.CreateSession(ctx, user.Username)
	if err != nil {
		return nil, nil, err
	}
	public := user.Public()
	return &public, sess, nil
}

// LoginWithProvider verifies a provider credential and signs in with the
// identity it asserts, registering it on first use.
func (s *AccountService) LoginWithProvider(ctx context.Context, credential string) (*domain.User, *domain.Session, error) {
	if s.provider == nil {
		return nil, nil, ErrProviderUnavailable
	}
	profile, err := s.provider.Verify(ctx, credential)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.LoginWithProvider(ctx, *profile)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.users.CreateSession(ctx, user.Username)
	if err != nil {
		return nil, nil, err
	}
	public := user.Public()
	return &public, sess, nil
}

// Resolve returns the live session with id, or nil.
func (s *AccountService) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	return s.users.ResolveSession(ctx, id)
}

// Logout ends the session and drops its draft snapshots.
func (s *AccountService) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return ErrUnauthenticated
	}
	if err := s.snapshots.ClearScope(ctx, sess.ID); err != nil {
		logger.WithSession(*sess).WarnContext(ctx, "Failed to clear session snapshots",
			slog.String("error", err.Error()))
	}
	return s.users.EndSession(ctx, sess.ID)
}

// Profile returns the public view of a user.
func (s *AccountService) Profile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	public := user.Public()
	return &public, nil
}

// Search finds users by name, username or pen name.
func (s *AccountService) Search(ctx context.Context, query string) ([]domain.User, error) {
	users, err := s.users.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// UpdateProfile replaces the session user's profile.
func (s *AccountService) UpdateProfile(ctx context.Context, sess *domain.Session, profile domain.User) (*domain.User, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	profile.Username = sess.Username
	if err := s.validator.ValidateProfile(&profile); err != nil {
		return nil, err
	}
	updated, err := s.users.UpdateProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	public := updated.Public()
	return &public, nil
}

// ToggleFollow follows or unfollows target. Returns true if now following.
func (s *AccountService) ToggleFollow(ctx context.Context, sess *domain.Session, target string) (bool, error) {
	if sess == nil {
		return false, ErrUnauthenticated
	}
	return s.users.ToggleFollow(ctx, sess.Username, target)
}

// DeleteAccount removes the session user, trashes their posts and ends
// every session of the account.
func (s *AccountService) DeleteAccount(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return ErrUnauthenticated
	}
	found, err := s.users.Delete(ctx, sess.Username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !found {
		return ErrUserNotFound
	}
	trashed, err := s.posts.SoftDeleteByAuthor(ctx, sess.Username)
	if err != nil {
		return fmt.Errorf("trash posts: %w", err)
	}
	logger.WithSession(*sess).InfoContext(ctx, "Account deleted", slog.Int("trashed_posts", trashed))
	return s.Logout(ctx, sess)
}
