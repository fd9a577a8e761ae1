package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pitchlabs/salescoach/pkg/config"
)

// statusTTL bounds how long an analysis status key lives. Long enough to
// cover polling after a slow qualitative pass, short enough to self-clean.
const statusTTL = time.Hour

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisStatusStore tracks per-session analysis status in redis so any
// instance can answer a report poll.
type RedisStatusStore struct {
	client *redis.Client
}

// NewRedisStatusStore wraps an established redis client.
func NewRedisStatusStore(client *redis.Client) *RedisStatusStore {
	return &RedisStatusStore{client: client}
}

func statusKey(sessionID uuid.UUID) string {
	return "analysis:status:" + sessionID.String()
}

// SetStatus records the analysis status for a session.
func (s *RedisStatusStore) SetStatus(ctx context.Context, sessionID uuid.UUID, status string) error {
	return s.client.Set(ctx, statusKey(sessionID), status, statusTTL).Err()
}

// GetStatus returns the recorded status, or empty when none is set.
func (s *RedisStatusStore) GetStatus(ctx context.Context, sessionID uuid.UUID) (string, error) {
	val, err := s.client.Get(ctx, statusKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}
