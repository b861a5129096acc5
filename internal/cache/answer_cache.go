package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const answerKeyPrefix = "atelier:chat:answer:"

// NewRedisClient creates a client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RedisAnswerCache stores generated chat answers keyed by normalized question.
type RedisAnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAnswerCache creates a cache whose entries expire after ttl.
func NewRedisAnswerCache(client *redis.Client, ttl time.Duration) *RedisAnswerCache {
	return &RedisAnswerCache{client: client, ttl: ttl}
}

// Get returns the cached answer and whether it was present.
func (c *RedisAnswerCache) Get(ctx context.Context, question string) (string, bool, error) {
	answer, err := c.client.Get(ctx, answerKey(question)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached answer: %w", err)
	}
	return answer, true, nil
}

// Set stores an answer.
func (c *RedisAnswerCache) Set(ctx context.Context, question, answer string) error {
	if err := c.client.Set(ctx, answerKey(question), answer, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}
	return nil
}

// Ping checks the connection for readiness probes.
func (c *RedisAnswerCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func answerKey(question string) string {
	sum := sha256.Sum256([]byte(question))
	return answerKeyPrefix + hex.EncodeToString(sum[:])
}
