// Package redisindex implements the search index on Redis. Documents are
// stored as JSON strings keyed per task, with a per-owner set tracking which
// documents each owner holds.
package redisindex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/taskhub/taskhub-api/internal/search"
)

const (
	docKeyPrefix   = "search:task:"
	ownerKeyPrefix = "search:user:"
)

// RedisIndex stores search documents in Redis.
type RedisIndex struct {
	client *redis.Client
	logger *slog.Logger
}

var _ search.Index = (*RedisIndex)(nil)

// NewRedisIndex creates an index backed by the given Redis client.
func NewRedisIndex(client *redis.Client, logger *slog.Logger) *RedisIndex {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisIndex{
		client: client,
		logger: logger.With(slog.String("component", "redis_index")),
	}
}

func docKey(taskID string) string {
	return docKeyPrefix + taskID
}

func ownerKey(ownerID string) string {
	return ownerKeyPrefix + ownerID
}

// Upsert stores or replaces the document for doc.ID and records it in the
// owner's member set. Both writes happen in one pipeline so a document never
// exists without its owner entry.
func (r *RedisIndex) Upsert(ctx context.Context, doc search.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal search document: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, docKey(doc.ID), payload, 0)
	pipe.SAdd(ctx, ownerKey(doc.OwnerID), doc.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert search document: %w", err)
	}
	return nil
}

// Delete removes the document and its owner-set entry. Missing keys are
// treated as already deleted.
func (r *RedisIndex) Delete(ctx context.Context, ownerID, taskID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, docKey(taskID))
	pipe.SRem(ctx, ownerKey(ownerID), taskID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete search document: %w", err)
	}
	return nil
}

// Search loads the owner's documents and filters them by a case-insensitive
// substring match on title and description.
func (r *RedisIndex) Search(ctx context.Context, ownerID, query string) ([]search.Document, error) {
	ids, err := r.client.SMembers(ctx, ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list search documents: %w", err)
	}
	if len(ids) == 0 {
		return []search.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load search documents: %w", err)
	}

	needle := strings.ToLower(query)
	results := make([]search.Document, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// The set can briefly reference a deleted document.
			continue
		}
		var doc search.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			r.logger.WarnContext(ctx, "skipping malformed search document",
				slog.String("task_id", ids[i]),
				slog.String("error", err.Error()))
			continue
		}
		if matches(doc, needle) {
			results = append(results, doc)
		}
	}
	return results, nil
}

func matches(doc search.Document, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(doc.Title), needle) {
		return true
	}
	if doc.Description != nil && strings.Contains(strings.ToLower(*doc.Description), needle) {
		return true
	}
	return false
}
