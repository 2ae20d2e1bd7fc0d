package repository

import (
	"context"

	"taman-digital/internal/domain"
)

// PostRepository defines methods for post data access.
type PostRepository interface {
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	Save(ctx context.Context, post domain.Post) (*domain.Post, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
	Restore(ctx context.Context, id string) (bool, error)
	SetStatus(ctx context.Context, id string, status domain.PostStatus) (bool, error)
	Purge(ctx context.Context, id string) (bool, error)
	SweepTrash(ctx context.Context) (int, error)
	Search(ctx context.Context, query string) ([]domain.Post, error)
	Trending(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, username string, includeDrafts bool) ([]domain.Post, error)
	Trash(ctx context.Context, username string) ([]domain.Post, error)
	SoftDeleteByAuthor(ctx context.Context, username string) (int, error)
	HasPosts(ctx context.Context, username string) (bool, error)
	Like(ctx context.Context, id string) (int, error)
	Share(ctx context.Context, id string) (int, error)
	AddComment(ctx context.Context, postID, authorUsername, content string) (*domain.Comment, error)
	StatsFor(ctx context.Context, username string) (*domain.AuthorStats, error)
}

// UserRepository defines methods for accounts, the follow graph and sessions.
type UserRepository interface {
	Register(ctx context.Context, reg Registration) (*domain.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*domain.User, error)
	LoginWithProvider(ctx context.Context, profile ProviderProfile) (*domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	Search(ctx context.Context, query string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user domain.User) (*domain.User, error)
	ToggleFollow(ctx context.Context, follower, target string) (bool, error)
	Delete(ctx context.Context, username string) (bool, error)

	CreateSession(ctx context.Context, username string) (*domain.Session, error)
	ResolveSession(ctx context.Context, id string) (*domain.Session, error)
	EndSession(ctx context.Context, id string) error
}

// MessageRepository defines methods for direct messages.
type MessageRepository interface {
	Send(ctx context.Context, sender, receiver, content string) (*domain.Message, error)
	Between(ctx context.Context, a, b string) ([]domain.Message, error)
	Conversations(ctx context.Context, username string) ([]string, error)
}
