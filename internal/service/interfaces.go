package service

import (
	"context"

	"taman-digital/internal/domain"
	"taman-digital/internal/repository"
)

// ContentServiceInterface defines the post operations exposed over HTTP.
// Used for dependency injection in handlers.
type ContentServiceInterface interface {
	Get(ctx context.Context, viewer *domain.Session, id string) (*domain.Post, error)
	Search(ctx context.Context, query string) ([]domain.Post, error)
	Trending(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, viewer *domain.Session, username string) ([]domain.Post, error)
	Trash(ctx context.Context, sess *domain.Session) ([]domain.Post, error)
	Stats(ctx context.Context, username string) (*domain.AuthorStats, error)
	Save(ctx context.Context, sess *domain.Session, post domain.Post) (*domain.Post, error)
	SetStatus(ctx context.Context, sess *domain.Session, id string, status domain.PostStatus) (*domain.Post, error)
	SoftDelete(ctx context.Context, sess *domain.Session, id string) error
	Restore(ctx context.Context, sess *domain.Session, id string) error
	Purge(ctx context.Context, sess *domain.Session, id string) error
	SweepTrash(ctx context.Context) (int, error)
	Like(ctx context.Context, id string) (int, error)
	Share(ctx context.Context, id string) (int, error)
	Comment(ctx context.Context, sess *domain.Session, id, body string) (*domain.Comment, error)
	Markdown(ctx context.Context, viewer *domain.Session, id string) (string, []byte, error)
}

// EditorServiceInterface defines the edit buffer operations.
type EditorServiceInterface interface {
	Open(ctx context.Context, sess *domain.Session, key string) (*EditorState, error)
	Recover(ctx context.Context, sess *domain.Session, key string) (*EditorState, error)
	Discard(ctx context.Context, sess *domain.Session, key string) error
	Edit(sess *domain.Session, key string, draft domain.Draft) error
	Flush(ctx context.Context, sess *domain.Session, key string)
	Commit(ctx context.Context, sess *domain.Session, key string, draft domain.Draft) (*domain.Post, error)
	QuickIdea(ctx context.Context, sess *domain.Session, text string) (*domain.Post, error)
	Polish(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	// Close cancels scheduled snapshot writes.
	Close()
}

// AccountServiceInterface defines identity and session operations.
type AccountServiceInterface interface {
	Register(ctx context.Context, reg repository.Registration) (*domain.User, *domain.Session, error)
	Login(ctx context.Context, identifier, password string) (*domain.User, *domain.Session, error)
	LoginWithProvider(ctx context.Context, credential string) (*domain.User, *domain.Session, error)
	Resolve(ctx context.Context, id string) (*domain.Session, error)
	Logout(ctx context.Context, sess *domain.Session) error
	Profile(ctx context.Context, username string) (*domain.User, error)
	Search(ctx context.Context, query string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, sess *domain.Session, profile domain.User) (*domain.User, error)
	ToggleFollow(ctx context.Context, sess *domain.Session, target string) (bool, error)
	DeleteAccount(ctx context.Context, sess *domain.Session) error
}

// MessageServiceInterface defines direct messaging operations.
type MessageServiceInterface interface {
	Send(ctx context.Context, sess *domain.Session, receiver, content string) (*domain.Message, error)
	Conversation(ctx context.Context, sess *domain.Session, other string) ([]domain.Message, error)
	Conversations(ctx context.Context, sess *domain.Session) ([]string, error)
}

var (
	_ ContentServiceInterface = (*ContentService)(nil)
	_ EditorServiceInterface  = (*EditorService)(nil)
	_ AccountServiceInterface = (*AccountService)(nil)
	_ MessageServiceInterface = (*MessageService)(nil)
)
