package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"taman-digital/internal/domain"
	"taman-digital/internal/logger"
	"taman-digital/internal/metrics"
	"taman-digital/internal/snapshot"
	"taman-digital/internal/validator"
)

const (
	// DefaultAutosaveDelay is the quiet period after the last edit before a snapshot is written.
	DefaultAutosaveDelay = 2 * time.Second

	// snapshotWriteTimeout bounds a debounced snapshot write, which runs after
	// the request that scheduled it has returned.
	snapshotWriteTimeout = 5 * time.Second

	excerptLength     = 150
	ideaTitleLength   = 30
	ideaExcerptLength = 100
	ideaTag           = "Ide"
	ellipsis          = "..."

	recoveryKindNew      = "new"
	recoveryKindExisting = "existing"
)

// EditorState is what the editor shows when it opens a draft key.
type EditorState struct {
	Key string `json:"key"`
	// Post is the durable record, nil for a new draft.
	Post   *domain.Post `json:"post,omitempty"`
	Buffer domain.Draft `json:"buffer"`
	// Recovery is the snapshot offered for recovery, if any.
	Recovery *domain.DraftSnapshot `json:"recovery,omitempty"`
	Dirty    bool                  `json:"dirty"`
}

type pendingWrite struct {
	timer *time.Timer
	scope string
	key   string
	draft domain.Draft
}

// EditorService drives the edit buffer of a session: recovery prompts,
// debounced snapshots, commits and writing assistance.
type EditorService struct {
	content   *ContentService
	snapshots snapshot.Cache
	generator TextGenerator
	validator *validator.Validator
	delay     time.Duration

	mu      sync.Mutex
	pending map[string]*pendingWrite
	// inflight counts snapshot writes in progress per pending key; idle is
	// signalled whenever one finishes.
	inflight map[string]int
	idle     *sync.Cond
	closed   bool
}

// NewEditorService creates a new EditorService. generator may be nil, in
// which case writing assistance reports ErrGeneratorUnavailable.
func NewEditorService(content *ContentService, snapshots snapshot.Cache, generator TextGenerator, v *validator.Validator, delay time.Duration) *EditorService {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	s := &EditorService{
		content:   content,
		snapshots: snapshots,
		generator: generator,
		validator: v,
		delay:     delay,
		pending:   make(map[string]*pendingWrite),
		inflight:  make(map[string]int),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

func pendingKey(scope, key string) string {
	return scope + "\x00" + key
}

// Open loads key into an edit buffer and decides whether to offer recovery.
// An existing post offers its latest snapshot only when the snapshot is newer
// than the last durable save. A new draft offers any snapshot it has.
func (s *EditorService) Open(ctx context.Context, sess *domain.Session, key string) (*EditorState, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}

	state := &EditorState{Key: key}
	snap, err := s.snapshots.Get(ctx, sess.ID, key)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	if key == domain.NewDraftKey {
		state.Buffer = domain.Draft{Tags: []string{}, Status: domain.StatusDraft}
		if snap != nil {
			state.Recovery = snap
			metrics.RecoveryOffers.WithLabelValues(recoveryKindNew).Inc()
		}
		return state, nil
	}

	post, err := s.content.owned(ctx, sess, key)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted {
		return nil, ErrPostNotFound
	}
	state.Post = post
	state.Buffer = domain.DraftFromPost(post)
	if snap != nil && snap.NewerThan(post) {
		state.Recovery = snap
		metrics.RecoveryOffers.WithLabelValues(recoveryKindExisting).Inc()
	}
	return state, nil
}

// Recover loads the offered snapshot into the buffer and marks it dirty.
func (s *EditorService) Recover(ctx context.Context, sess *domain.Session, key string) (*EditorState, error) {
	state, err := s.Open(ctx, sess, key)
	if err != nil {
		return nil, err
	}
	if state.Recovery == nil {
		return nil, ErrNothingToRecover
	}
	state.Buffer = state.Recovery.Draft
	if state.Buffer.Tags == nil {
		state.Buffer.Tags = []string{}
	}
	if state.Buffer.Status == "" {
		state.Buffer.Status = domain.StatusDraft
	}
	state.Recovery = nil
	state.Dirty = true
	return state, nil
}

// Discard drops every snapshot of key, including a pending one.
func (s *EditorService) Discard(ctx context.Context, sess *domain.Session, key string) error {
	if sess == nil {
		return ErrUnauthenticated
	}
	s.cancel(sess.ID, key)
	if err := s.snapshots.Clear(ctx, sess.ID, key); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// Edit records a dirty buffer. The snapshot is written once no further edit
// of the same key arrives within the autosave delay.
func (s *EditorService) Edit(sess *domain.Session, key string, draft domain.Draft) error {
	if sess == nil {
		return ErrUnauthenticated
	}

	pw := &pendingWrite{scope: sess.ID, key: key, draft: draft}
	k := pendingKey(sess.ID, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if prev, ok := s.pending[k]; ok {
		prev.timer.Stop()
	}
	s.pending[k] = pw
	pw.timer = time.AfterFunc(s.delay, func() { s.fire(k, pw) })
	return nil
}

// fire writes pw unless it was superseded, flushed or cancelled meanwhile.
func (s *EditorService) fire(k string, pw *pendingWrite) {
	s.mu.Lock()
	if s.pending[k] != pw {
		s.mu.Unlock()
		return
	}
	delete(s.pending, k)
	s.inflight[k]++
	s.mu.Unlock()
	defer s.finish(k)

	ctx, cancel := context.WithTimeout(context.Background(), snapshotWriteTimeout)
	defer cancel()
	s.write(ctx, pw)
}

// finish marks a snapshot write of k as done.
func (s *EditorService) finish(k string) {
	s.mu.Lock()
	if s.inflight[k]--; s.inflight[k] <= 0 {
		delete(s.inflight, k)
	}
	s.idle.Broadcast()
	s.mu.Unlock()
}

func (s *EditorService) write(ctx context.Context, pw *pendingWrite) {
	if _, err := s.snapshots.Save(ctx, pw.scope, pw.key, pw.draft); err != nil {
		logger.WarnContext(ctx, "Failed to save draft snapshot",
			slog.String("session_id", pw.scope),
			slog.String("key", pw.key),
			slog.String("error", err.Error()))
		return
	}
	metrics.SnapshotsSaved.Inc()
	logger.DebugContext(ctx, "Draft snapshot saved",
		slog.String("session_id", pw.scope),
		slog.String("key", pw.key))
}

// Flush writes the pending snapshot of key now, if there is one.
func (s *EditorService) Flush(ctx context.Context, sess *domain.Session, key string) {
	if sess == nil {
		return
	}
	k := pendingKey(sess.ID, key)
	s.mu.Lock()
	pw, ok := s.pending[k]
	if !ok {
		s.mu.Unlock()
		return
	}
	pw.timer.Stop()
	delete(s.pending, k)
	s.inflight[k]++
	s.mu.Unlock()
	defer s.finish(k)

	s.write(ctx, pw)
}

// Pending reports whether a snapshot write is scheduled for key.
func (s *EditorService) Pending(sess *domain.Session, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[pendingKey(sess.ID, key)]
	return ok
}

// cancel drops the scheduled snapshot write of key and waits for any write
// already in progress, so a following Clear cannot be overtaken by it.
func (s *EditorService) cancel(scope, key string) {
	k := pendingKey(scope, key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.pending[k]; ok {
		pw.timer.Stop()
		delete(s.pending, k)
	}
	for s.inflight[k] > 0 {
		s.idle.Wait()
	}
}

// Close cancels every scheduled snapshot write. Later edits are ignored.
func (s *EditorService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for k, pw := range s.pending {
		pw.timer.Stop()
		delete(s.pending, k)
	}
}

// Commit validates the buffer and saves it as a post with the buffer's
// status. Committing the new draft key creates a post. The pending snapshot
// and the stored snapshots of key are dropped.
func (s *EditorService) Commit(ctx context.Context, sess *domain.Session, key string, draft domain.Draft) (*domain.Post, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.validator.ValidateDraft(&draft); err != nil {
		return nil, err
	}

	post := domain.Post{
		Title:    strings.TrimSpace(draft.Title),
		Content:  draft.Content,
		Excerpt:  draft.Excerpt,
		ReadTime: domain.ReadTimeLabel(draft.Content),
		Tags:     cleanTags(draft.Tags),
		Status:   draft.Status,
	}
	if strings.TrimSpace(post.Excerpt) == "" {
		post.Excerpt = truncate(draft.Content, excerptLength) + ellipsis
	}
	if key != domain.NewDraftKey {
		existing, err := s.content.owned(ctx, sess, key)
		if err != nil {
			return nil, err
		}
		if existing.IsDeleted {
			return nil, ErrPostNotFound
		}
		post.ID = existing.ID
		post.Date = existing.Date
	}

	s.cancel(sess.ID, key)
	saved, err := s.content.Save(ctx, sess, post)
	if err != nil {
		return nil, err
	}
	if key == domain.NewDraftKey {
		s.content.clearSnapshot(ctx, sess, domain.NewDraftKey)
	}
	return saved, nil
}

// QuickIdea stores text as a new draft tagged as an idea.
func (s *EditorService) QuickIdea(ctx context.Context, sess *domain.Session, text string) (*domain.Post, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if err := s.validator.ValidateIdea(text); err != nil {
		return nil, err
	}

	title := "Ide: " + truncate(text, ideaTitleLength)
	if len([]rune(text)) > ideaTitleLength {
		title += ellipsis
	}
	return s.content.Save(ctx, sess, domain.Post{
		Title:    title,
		Content:  text,
		Excerpt:  truncate(text, ideaExcerptLength),
		ReadTime: "1 min baca",
		Tags:     []string{ideaTag},
		Status:   domain.StatusDraft,
	})
}

// Polish asks the generator to improve text. On failure the error is
// returned and the caller keeps its original text.
func (s *EditorService) Polish(ctx context.Context, text string) (string, error) {
	return s.assist(ctx, TaskPolish, text)
}

// Summarize asks the generator for a one or two sentence excerpt.
func (s *EditorService) Summarize(ctx context.Context, text string) (string, error) {
	return s.assist(ctx, TaskSummarize, text)
}

func (s *EditorService) assist(ctx context.Context, task Task, text string) (string, error) {
	if s.generator == nil {
		metrics.ObserveAIRequest(string(task), ErrGeneratorUnavailable)
		return "", ErrGeneratorUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	out, err := s.generator.Generate(ctx, task, text)
	metrics.ObserveAIRequest(string(task), err)
	if err != nil {
		logger.ErrorContext(ctx, "Writing assistant request failed",
			slog.String("task", string(task)),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%s text: %w", task, err)
	}
	return out, nil
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func cleanTags(tags []string) []string {
	return domain.ParseTags(strings.Join(tags, ","))
}
