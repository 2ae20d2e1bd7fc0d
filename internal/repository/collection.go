package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"taman-digital/internal/logger"
	"taman-digital/internal/metrics"
	"taman-digital/internal/store"
)

// loadCollection reads and decodes the collection stored under key.
// found is false when the key has never been written. An unparseable value
// is logged and counted, then reported as an empty, found collection so the
// next write replaces it with a valid one.
func loadCollection[T any](ctx context.Context, kv store.KV, key string) (items []T, found bool, err error) {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return []T{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, &items); err != nil {
		logger.ErrorContext(ctx, "Data corruption detected, returning empty collection",
			slog.String("collection", key),
			slog.String("error", err.Error()))
		metrics.StoreCorruptReads.WithLabelValues(key).Inc()
		return []T{}, true, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

func storeCollection[T any](ctx context.Context, kv store.KV, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
