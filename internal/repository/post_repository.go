package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taman-digital/internal/domain"
	"taman-digital/internal/logger"
	"taman-digital/internal/metrics"
	"taman-digital/internal/store"
)

// DefaultRetention is how long a trashed post is kept before it may be purged.
const DefaultRetention = 30 * 24 * time.Hour

// TrendingLimit caps the trending list.
const TrendingLimit = 3

// PostOption configures a KVPostRepository.
type PostOption func(*KVPostRepository)

// WithClock overrides the clock used for lastEdited, deletedAt and retention.
func WithClock(now func() time.Time) PostOption {
	return func(r *KVPostRepository) { r.now = now }
}

// WithLocation sets the time zone used for day and hour statistics.
func WithLocation(loc *time.Location) PostOption {
	return func(r *KVPostRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithRetention sets the trash retention window.
func WithRetention(d time.Duration) PostOption {
	return func(r *KVPostRepository) {
		if d > 0 {
			r.retention = d
		}
	}
}

// WithLazySweep controls whether Save purges expired trash before writing.
func WithLazySweep(enabled bool) PostOption {
	return func(r *KVPostRepository) { r.lazySweep = enabled }
}

// WithSeed controls whether the example posts are written on first run.
func WithSeed(enabled bool) PostOption {
	return func(r *KVPostRepository) { r.seed = enabled }
}

// KVPostRepository implements PostRepository on a single serialized
// collection. Every mutation is a full read-modify-write of that collection.
type KVPostRepository struct {
	kv        store.KV
	now       func() time.Time
	loc       *time.Location
	retention time.Duration
	lazySweep bool
	seed      bool

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

// NewKVPostRepository creates a new KVPostRepository.
func NewKVPostRepository(kv store.KV, opts ...PostOption) *KVPostRepository {
	r := &KVPostRepository{
		kv:        kv,
		now:       time.Now,
		loc:       time.Local,
		retention: DefaultRetention,
		lazySweep: true,
		seed:      true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// load returns the upgraded collection. Records older than the current schema
// are upgraded and written back once.
func (r *KVPostRepository) load(ctx context.Context) ([]domain.Post, error) {
	stored, found, err := loadCollection[domain.StoredPost](ctx, r.kv, store.KeyPosts)
	if err != nil {
		return nil, err
	}
	if !found {
		if !r.seed {
			return []domain.Post{}, nil
		}
		posts := examplePosts(r.now())
		if err := storeCollection(ctx, r.kv, store.KeyPosts, posts); err != nil {
			return nil, fmt.Errorf("seed posts: %w", err)
		}
		logger.InfoContext(ctx, "Seeded example posts", slog.Int("count", len(posts)))
		return posts, nil
	}

	posts := make([]domain.Post, len(stored))
	upgraded := 0
	for i, s := range stored {
		if s.NeedsUpgrade() {
			upgraded++
		}
		posts[i] = domain.UpgradePost(s)
	}
	if upgraded > 0 {
		if err := storeCollection(ctx, r.kv, store.KeyPosts, posts); err != nil {
			return nil, fmt.Errorf("write upgraded posts: %w", err)
		}
		logger.InfoContext(ctx, "Upgraded stored posts",
			slog.Int("count", upgraded),
			slog.Int("schema_version", domain.CurrentSchemaVersion))
	}
	return posts, nil
}

func (r *KVPostRepository) persist(ctx context.Context, posts []domain.Post) error {
	return storeCollection(ctx, r.kv, store.KeyPosts, posts)
}

// List returns every post, trashed ones included, in collection order.
func (r *KVPostRepository) List(ctx context.Context) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Get returns the post with id, trashed or not. Returns nil if not found.
func (r *KVPostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(posts, id); i >= 0 {
		return &posts[i], nil
	}
	return nil, nil
}

// Save inserts or updates post by id and stamps lastEdited. Likes, shares and
// comments of an existing record are kept regardless of what the caller sent.
// New posts are placed at the front of the collection.
func (r *KVPostRepository) Save(ctx context.Context, post domain.Post) (*domain.Post, error) {
	if post.ID == "" {
		return nil, errors.New("save post: empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	if r.lazySweep {
		var purged int
		posts, purged = CleanupTrash(posts, now, r.retention)
		if purged > 0 {
			metrics.ObservePurge(metrics.PurgeRetention, purged)
			logger.InfoContext(ctx, "Purged expired trash during save", slog.Int("count", purged))
		}
	}

	post.LastEdited = &now
	post.SchemaVersion = domain.CurrentSchemaVersion
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if !post.IsDeleted {
		post.DeletedAt = nil
	}

	if i := indexOf(posts, post.ID); i >= 0 {
		existing := posts[i]
		post.Likes = existing.Likes
		post.Shares = existing.Shares
		post.Comments = existing.Comments
		if post.Date.IsZero() {
			post.Date = existing.Date
		}
		posts[i] = post
	} else {
		post.Likes = 0
		post.Shares = 0
		post.Comments = []domain.Comment{}
		if post.Date.IsZero() {
			post.Date = now
		}
		posts = append([]domain.Post{post}, posts...)
	}

	if err := r.persist(ctx, posts); err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}
	return &post, nil
}

// SoftDelete moves a post to the trash. Returns false if not found.
func (r *KVPostRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	return r.update(ctx, id, func(p *domain.Post) {
		now := r.now()
		p.IsDeleted = true
		p.DeletedAt = &now
	})
}

// Restore brings a trashed post back with its previous status. Restoring an
// active post is a no-op. Returns false if not found.
func (r *KVPostRepository) Restore(ctx context.Context, id string) (bool, error) {
	return r.update(ctx, id, func(p *domain.Post) {
		p.IsDeleted = false
		p.DeletedAt = nil
	})
}

// SetStatus changes the status of a post and stamps lastEdited. Returns
// false if not found.
func (r *KVPostRepository) SetStatus(ctx context.Context, id string, status domain.PostStatus) (bool, error) {
	now := r.now()
	return r.update(ctx, id, func(p *domain.Post) {
		p.Status = status
		p.LastEdited = &now
	})
}

func (r *KVPostRepository) update(ctx context.Context, id string, mutate func(p *domain.Post)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return false, nil
	}
	mutate(&posts[i])
	if err := r.persist(ctx, posts); err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	return true, nil
}

// Purge removes a post permanently. Returns false if not found.
func (r *KVPostRepository) Purge(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return false, nil
	}
	posts = append(posts[:i], posts[i+1:]...)
	if err := r.persist(ctx, posts); err != nil {
		return false, fmt.Errorf("purge post: %w", err)
	}
	return true, nil
}

// SweepTrash purges every trashed post older than the retention window and
// returns how many were removed.
func (r *KVPostRepository) SweepTrash(ctx context.Context) (int, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.TrashSweepDuration)

	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	kept, purged := CleanupTrash(posts, r.now(), r.retention)
	if purged == 0 {
		return 0, nil
	}
	if err := r.persist(ctx, kept); err != nil {
		return 0, fmt.Errorf("sweep trash: %w", err)
	}
	metrics.ObservePurge(metrics.PurgeRetention, purged)
	return purged, nil
}

// CleanupTrash drops trashed posts whose deletedAt is at or before
// now - retention. Trashed posts without a deletedAt are kept.
func CleanupTrash(posts []domain.Post, now time.Time, retention time.Duration) ([]domain.Post, int) {
	cutoff := now.Add(-retention)
	kept := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsDeleted && p.DeletedAt != nil && !p.DeletedAt.After(cutoff) {
			continue
		}
		kept = append(kept, p)
	}
	return kept, len(posts) - len(kept)
}

// Search returns public posts whose title, content or any tag contains query,
// case-insensitively. An empty query returns every public post.
func (r *KVPostRepository) Search(ctx context.Context, query string) ([]domain.Post, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	result := make([]domain.Post, 0)
	for _, p := range posts {
		if !p.IsPublic() {
			continue
		}
		if q == "" || matches(p, q) {
			result = append(result, p)
		}
	}
	return result, nil
}

func matches(p domain.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Trending returns the top public posts by score. Equal scores keep their
// collection order.
func (r *KVPostRepository) Trending(ctx context.Context) ([]domain.Post, error) {
	public, err := r.Search(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(public, func(i, j int) bool {
		return public[i].Score() > public[j].Score()
	})
	if len(public) > TrendingLimit {
		public = public[:TrendingLimit]
	}
	return public, nil
}

// ListByAuthor returns the author's non-deleted posts, most recently edited first.
func (r *KVPostRepository) ListByAuthor(ctx context.Context, username string, includeDrafts bool) ([]domain.Post, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Post, 0)
	for _, p := range posts {
		if p.AuthorUsername != username || p.IsDeleted {
			continue
		}
		if !includeDrafts && p.Status != domain.StatusPublished {
			continue
		}
		result = append(result, p)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EditedAt().After(result[j].EditedAt())
	})
	return result, nil
}

// Trash returns the author's soft-deleted posts, most recently deleted first.
func (r *KVPostRepository) Trash(ctx context.Context, username string) ([]domain.Post, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Post, 0)
	for _, p := range posts {
		if p.AuthorUsername == username && p.IsDeleted {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return deletedAt(result[i]).After(deletedAt(result[j]))
	})
	return result, nil
}

func deletedAt(p domain.Post) time.Time {
	if p.DeletedAt == nil {
		return time.Time{}
	}
	return *p.DeletedAt
}

// SoftDeleteByAuthor trashes every active post of username and returns how many changed.
func (r *KVPostRepository) SoftDeleteByAuthor(ctx context.Context, username string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	now := r.now()
	count := 0
	for i := range posts {
		if posts[i].AuthorUsername == username && !posts[i].IsDeleted {
			posts[i].IsDeleted = true
			deleted := now
			posts[i].DeletedAt = &deleted
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	if err := r.persist(ctx, posts); err != nil {
		return 0, fmt.Errorf("trash author posts: %w", err)
	}
	return count, nil
}

// HasPosts reports whether username authors any post, trashed ones included.
func (r *KVPostRepository) HasPosts(ctx context.Context, username string) (bool, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	for i := range posts {
		if posts[i].AuthorUsername == username {
			return true, nil
		}
	}
	return false, nil
}

// Like increments the like count and returns the new value, or 0 if not found.
func (r *KVPostRepository) Like(ctx context.Context, id string) (int, error) {
	var likes int
	if _, err := r.update(ctx, id, func(p *domain.Post) {
		p.Likes++
		likes = p.Likes
	}); err != nil {
		return 0, err
	}
	return likes, nil
}

// Share increments the share count and returns the new value, or 0 if not found.
func (r *KVPostRepository) Share(ctx context.Context, id string) (int, error) {
	var shares int
	if _, err := r.update(ctx, id, func(p *domain.Post) {
		p.Shares++
		shares = p.Shares
	}); err != nil {
		return 0, err
	}
	return shares, nil
}

// AddComment appends a comment to the post. Returns nil if the post is not found.
func (r *KVPostRepository) AddComment(ctx context.Context, postID, authorUsername, content string) (*domain.Comment, error) {
	var comment *domain.Comment
	if _, err := r.update(ctx, postID, func(p *domain.Post) {
		c := domain.Comment{
			ID:             uuid.New().String(),
			AuthorUsername: authorUsername,
			Content:        content,
			Date:           r.now(),
		}
		p.Comments = append(p.Comments, c)
		comment = &c
	}); err != nil {
		return nil, err
	}
	return comment, nil
}

// StatsFor aggregates the author's non-deleted posts.
func (r *KVPostRepository) StatsFor(ctx context.Context, username string) (*domain.AuthorStats, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.AuthorStats{
		ProductiveDay: domain.NoStat,
		TimeOfDay:     domain.NoStat,
	}
	var dayCounts [7]int
	var hourCounts [24]int
	active := 0

	for _, p := range posts {
		if p.AuthorUsername != username || p.IsDeleted {
			continue
		}
		active++
		if p.Status == domain.StatusPublished {
			stats.PublishedCount++
			stats.TotalWords += domain.WordCount(p.Content)
		}
		if stats.LastActive == nil || p.Date.After(*stats.LastActive) {
			date := p.Date
			stats.LastActive = &date
		}
		local := p.Date.In(r.loc)
		dayCounts[local.Weekday()]++
		hourCounts[local.Hour()]++
	}
	stats.TotalPosts = stats.PublishedCount

	if stats.TotalPosts > 0 {
		stats.ProductiveDay = domain.DayNames[argmax(dayCounts[:])]
		stats.TimeOfDay = domain.TimeOfDayBucket(argmax(hourCounts[:]))
	}
	stats.Insight = insight(stats)

	logger.DebugContext(ctx, "Computed author stats",
		slog.String("username", username),
		slog.Int("active_posts", active),
		slog.Int("published", stats.PublishedCount))
	return stats, nil
}

// argmax returns the first index holding the largest count.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

func insight(s *domain.AuthorStats) string {
	if s.TotalPosts == 0 {
		return "Mulailah menulis untuk melihat polamu."
	}
	text := fmt.Sprintf("Kamu paling produktif di %s hari. ", strings.ToLower(s.TimeOfDay))
	switch {
	case s.TotalWords > 5000:
		text += "Kata-katamu mulai mengalir deras."
	case s.TotalWords > 1000:
		text += "Konsistensi mulai terbentuk."
	default:
		text += "Setiap kata adalah langkah awal."
	}
	return text
}

func indexOf(posts []domain.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}
