package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taman-digital/internal/domain"
	"taman-digital/internal/store"
)

// KVMessageRepository implements MessageRepository as an append-only log.
type KVMessageRepository struct {
	kv  store.KV
	now func() time.Time

	mu sync.Mutex
}

// NewKVMessageRepository creates a new KVMessageRepository. A nil clock uses time.Now.
func NewKVMessageRepository(kv store.KV, now func() time.Time) *KVMessageRepository {
	if now == nil {
		now = time.Now
	}
	return &KVMessageRepository{kv: kv, now: now}
}

// Send appends a message to the log.
func (r *KVMessageRepository) Send(ctx context.Context, sender, receiver, content string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages, _, err := loadCollection[domain.Message](ctx, r.kv, store.KeyMessages)
	if err != nil {
		return nil, err
	}
	msg := domain.Message{
		ID:               uuid.New().String(),
		SenderUsername:   sender,
		ReceiverUsername: receiver,
		Content:          content,
		Timestamp:        r.now(),
	}
	messages = append(messages, msg)
	if err := storeCollection(ctx, r.kv, store.KeyMessages, messages); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &msg, nil
}

// Between returns the messages exchanged by a and b, oldest first.
func (r *KVMessageRepository) Between(ctx context.Context, a, b string) ([]domain.Message, error) {
	messages, _, err := loadCollection[domain.Message](ctx, r.kv, store.KeyMessages)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Message, 0)
	for _, m := range messages {
		if (m.SenderUsername == a && m.ReceiverUsername == b) ||
			(m.SenderUsername == b && m.ReceiverUsername == a) {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// Conversations returns every user username has exchanged messages with,
// in order of first appearance in the log.
func (r *KVMessageRepository) Conversations(ctx context.Context, username string) ([]string, error) {
	messages, _, err := loadCollection[domain.Message](ctx, r.kv, store.KeyMessages)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	partners := make([]string, 0)
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			partners = append(partners, u)
		}
	}
	for _, m := range messages {
		if m.SenderUsername == username {
			add(m.ReceiverUsername)
		}
		if m.ReceiverUsername == username {
			add(m.SenderUsername)
		}
	}
	return partners, nil
}
