package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taman-digital/internal/domain"
	"taman-digital/internal/logger"
	"taman-digital/internal/metrics"
	"taman-digital/internal/repository"
	"taman-digital/internal/snapshot"
	"taman-digital/internal/validator"
)

// ContentService is the session-aware entry point to the post collection.
// Only the author may change, trash, restore or purge a post.
type ContentService struct {
	posts     repository.PostRepository
	snapshots snapshot.Cache
	validator *validator.Validator
	loc       *time.Location
}

// NewContentService creates a new ContentService.
func NewContentService(posts repository.PostRepository, snapshots snapshot.Cache, v *validator.Validator) *ContentService {
	return &ContentService{
		posts:     posts,
		snapshots: snapshots,
		validator: v,
		loc:       time.Local,
	}
}

// Get returns a post visible to viewer. Drafts and trashed posts are only
// visible to their author. viewer may be nil.
func (s *ContentService) Get(ctx context.Context, viewer *domain.Session, id string) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !post.IsPublic() && (viewer == nil || viewer.Username != post.AuthorUsername) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// owned returns the post if sess is its author.
func (s *ContentService) owned(ctx context.Context, sess *domain.Session, id string) (*domain.Post, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.AuthorUsername != sess.Username {
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *ContentService) Search(ctx context.Context, query string) ([]domain.Post, error) {
	return s.posts.Search(ctx, query)
}

func (s *ContentService) Trending(ctx context.Context) ([]domain.Post, error) {
	return s.posts.Trending(ctx)
}

// ListByAuthor returns the author's posts. Drafts are included only when
// viewer is the author.
func (s *ContentService) ListByAuthor(ctx context.Context, viewer *domain.Session, username string) ([]domain.Post, error) {
	includeDrafts := viewer != nil && viewer.Username == username
	return s.posts.ListByAuthor(ctx, username, includeDrafts)
}

// Trash returns the session user's trashed posts.
func (s *ContentService) Trash(ctx context.Context, sess *domain.Session) ([]domain.Post, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	return s.posts.Trash(ctx, sess.Username)
}

func (s *ContentService) Stats(ctx context.Context, username string) (*domain.AuthorStats, error) {
	return s.posts.StatsFor(ctx, username)
}

// Save writes post on behalf of the session user. An empty id creates a new
// post owned by the session user. A trashed post cannot be saved. Any snapshot of the post in this session is
// dropped once the durable write succeeds.
func (s *ContentService) Save(ctx context.Context, sess *domain.Session, post domain.Post) (*domain.Post, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}

	if post.ID == "" {
		post.ID = uuid.New().String()
		post.AuthorUsername = sess.Username
	} else {
		existing, err := s.posts.Get(ctx, post.ID)
		if err != nil {
			return nil, fmt.Errorf("get post: %w", err)
		}
		switch {
		case existing == nil:
			post.AuthorUsername = sess.Username
		case existing.AuthorUsername != sess.Username:
			return nil, ErrForbidden
		case existing.IsDeleted:
			// Trashed posts come back only through Restore.
			return nil, ErrPostNotFound
		default:
			post.AuthorUsername = existing.AuthorUsername
		}
	}
	if !domain.IsValidStatus(post.Status) {
		post.Status = domain.StatusDraft
	}
	post.IsDeleted = false
	post.DeletedAt = nil

	saved, err := s.posts.Save(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}
	metrics.PostsSaved.WithLabelValues(string(saved.Status)).Inc()
	s.clearSnapshot(ctx, sess, saved.ID)

	logger.WithSession(*sess).InfoContext(ctx, "Post saved",
		slog.String("post_id", saved.ID),
		slog.String("status", string(saved.Status)))
	return saved, nil
}

// SetStatus publishes or unpublishes a post without touching its content.
// Trashed posts keep their status until restored.
func (s *ContentService) SetStatus(ctx context.Context, sess *domain.Session, id string, status domain.PostStatus) (*domain.Post, error) {
	if err := s.validator.ValidateStatus(status); err != nil {
		return nil, err
	}
	post, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted {
		return nil, ErrPostNotFound
	}
	found, err := s.posts.SetStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("set post status: %w", err)
	}
	if !found {
		return nil, ErrPostNotFound
	}
	metrics.PostsSaved.WithLabelValues(string(status)).Inc()

	updated, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}
	logger.WithSession(*sess).InfoContext(ctx, "Post status changed",
		slog.String("post_id", id),
		slog.String("status", string(status)))
	return updated, nil
}

// SoftDelete moves the post to the trash.
func (s *ContentService) SoftDelete(ctx context.Context, sess *domain.Session, id string) error {
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	found, err := s.posts.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("trash post: %w", err)
	}
	if !found {
		return ErrPostNotFound
	}
	metrics.PostsTrashed.Inc()
	return nil
}

// Restore brings the post back from the trash with its previous status.
func (s *ContentService) Restore(ctx context.Context, sess *domain.Session, id string) error {
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	found, err := s.posts.Restore(ctx, id)
	if err != nil {
		return fmt.Errorf("restore post: %w", err)
	}
	if !found {
		return ErrPostNotFound
	}
	metrics.PostsRestored.Inc()
	return nil
}

// Purge removes the post permanently, together with its snapshots in this session.
func (s *ContentService) Purge(ctx context.Context, sess *domain.Session, id string) error {
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	found, err := s.posts.Purge(ctx, id)
	if err != nil {
		return fmt.Errorf("purge post: %w", err)
	}
	if !found {
		return ErrPostNotFound
	}
	metrics.ObservePurge(metrics.PurgeExplicit, 1)
	s.clearSnapshot(ctx, sess, id)

	logger.WithSession(*sess).InfoContext(ctx, "Post purged", slog.String("post_id", id))
	return nil
}

// SweepTrash purges expired trash across all authors.
func (s *ContentService) SweepTrash(ctx context.Context) (int, error) {
	return s.posts.SweepTrash(ctx)
}

// Like increments the like count of a public post.
func (s *ContentService) Like(ctx context.Context, id string) (int, error) {
	if _, err := s.Get(ctx, nil, id); err != nil {
		return 0, err
	}
	return s.posts.Like(ctx, id)
}

// Share increments the share count of a public post.
func (s *ContentService) Share(ctx context.Context, id string) (int, error) {
	if _, err := s.Get(ctx, nil, id); err != nil {
		return 0, err
	}
	return s.posts.Share(ctx, id)
}

// Comment appends a comment by the session user to a post visible to them.
func (s *ContentService) Comment(ctx context.Context, sess *domain.Session, id, body string) (*domain.Comment, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.validator.ValidateComment(body); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, sess, id); err != nil {
		return nil, err
	}
	comment, err := s.posts.AddComment(ctx, id, sess.Username, body)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	if comment == nil {
		return nil, ErrPostNotFound
	}
	return comment, nil
}

// Markdown renders a post visible to viewer as a markdown document.
func (s *ContentService) Markdown(ctx context.Context, viewer *domain.Session, id string) (string, []byte, error) {
	post, err := s.Get(ctx, viewer, id)
	if err != nil {
		return "", nil, err
	}
	name, body := ExportMarkdown(post, s.loc)
	return name, body, nil
}

func (s *ContentService) clearSnapshot(ctx context.Context, sess *domain.Session, key string) {
	if err := s.snapshots.Clear(ctx, sess.ID, key); err != nil {
		logger.WithSession(*sess).WarnContext(ctx, "Failed to clear snapshot",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}
