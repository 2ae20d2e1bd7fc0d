package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taman-digital/internal/domain"
)

const keyPrefix = "snapshot:"

// Redis implements Cache on redis lists. Every key of a scope expires ttl
// after its last write, which bounds snapshots to the session lifetime.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	opts   options
}

// NewRedis creates a redis-backed cache.
func NewRedis(client *redis.Client, ttl time.Duration, opts ...Option) *Redis {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Redis{client: client, ttl: ttl, opts: o}
}

func listKey(scope, key string) string {
	return keyPrefix + scope + ":" + key
}

func scopeKey(scope string) string {
	return keyPrefix + scope
}

func (r *Redis) Save(ctx context.Context, scope, key string, draft domain.Draft) (*domain.DraftSnapshot, error) {
	snap := domain.DraftSnapshot{
		Key:       key,
		Draft:     draft,
		Timestamp: r.opts.now(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	lk := listKey(scope, key)
	sk := scopeKey(scope)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, lk, data)
	pipe.LTrim(ctx, lk, 0, int64(r.opts.history-1))
	pipe.SAdd(ctx, sk, key)
	if r.ttl > 0 {
		pipe.Expire(ctx, lk, r.ttl)
		pipe.Expire(ctx, sk, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return &snap, nil
}

func (r *Redis) Get(ctx context.Context, scope, key string) (*domain.DraftSnapshot, error) {
	data, err := r.client.LIndex(ctx, listKey(scope, key), 0).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap domain.DraftSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (r *Redis) History(ctx context.Context, scope, key string) ([]domain.DraftSnapshot, error) {
	items, err := r.client.LRange(ctx, listKey(scope, key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	out := make([]domain.DraftSnapshot, 0, len(items))
	for _, item := range items {
		var snap domain.DraftSnapshot
		if err := json.Unmarshal([]byte(item), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, nil
}

func (r *Redis) Clear(ctx context.Context, scope, key string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, listKey(scope, key))
	pipe.SRem(ctx, scopeKey(scope), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func (r *Redis) ClearScope(ctx context.Context, scope string) error {
	sk := scopeKey(scope)
	keys, err := r.client.SMembers(ctx, sk).Result()
	if err != nil {
		return fmt.Errorf("list snapshot keys: %w", err)
	}

	toDelete := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		toDelete = append(toDelete, listKey(scope, k))
	}
	toDelete = append(toDelete, sk)
	if err := r.client.Del(ctx, toDelete...).Err(); err != nil {
		return fmt.Errorf("clear snapshot scope: %w", err)
	}
	return nil
}
