package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"message-api/internal/model"
)

const (
	listKeyPrefix = "messages:list:"
	generationKey = "messages:list:gen"
)

// ListCache keeps the full, ordered message list under a key that includes a
// generation counter. Invalidate bumps the counter, so a list read from the
// store before a write can only land under a generation nobody reads again.
type ListCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewListCache(client *redisv9.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ListCache{
		client: client,
		ttl:    ttl,
	}
}

// GetList returns the cached list for the current generation. The generation
// is returned on a miss too; pass it to SetList after reading the store.
func (c *ListCache) GetList(ctx context.Context) ([]model.Message, bool, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, false, 0, err
	}

	raw, err := c.client.Get(ctx, listKey(gen)).Bytes()
	if err == redisv9.Nil {
		return nil, false, gen, nil
	}
	if err != nil {
		return nil, false, 0, fmt.Errorf("redis get message list failed: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, false, 0, fmt.Errorf("unmarshal cached message list failed: %w", err)
	}
	return messages, true, gen, nil
}

func (c *ListCache) SetList(ctx context.Context, gen int64, messages []model.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal message list cache failed: %w", err)
	}
	if err := c.client.Set(ctx, listKey(gen), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set message list failed: %w", err)
	}
	return nil
}

func (c *ListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis bump message list generation failed: %w", err)
	}
	return nil
}

func (c *ListCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err == redisv9.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get message list generation failed: %w", err)
	}
	return gen, nil
}

func listKey(gen int64) string {
	return fmt.Sprintf("%s%d", listKeyPrefix, gen)
}
