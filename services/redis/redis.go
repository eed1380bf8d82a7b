package redis

import (
	redis_models "Corazzato/models/redis"
	redis_utils "Corazzato/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// SaveSession caches a verified token session.
// Key format: "session:{token}", TTL: until the token's expiration.
func (rc *RedisClient) SaveSession(token string, session *redis_models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session for token already expired")
	}

	key := redis_utils.FormatSessionKey(token)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error marshaling session data: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, ttl).Err()
}

// GetSession retrieves a cached session for a token.
// Returns redis.Nil-wrapped error on cache miss.
func (rc *RedisClient) GetSession(token string) (*redis_models.Session, error) {
	key := redis_utils.FormatSessionKey(token)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting session data: %w", err)
	}

	var session redis_models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("error unmarshaling session data: %v", err)
	}
	return &session, nil
}

// DeleteSession drops a cached session (logout, or token superseded by a
// new login).
func (rc *RedisClient) DeleteSession(token string) error {
	key := redis_utils.FormatSessionKey(token)
	if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting session: %v", err)
	}
	return nil
}

// SaveMatchSnapshot caches a serialized match-status payload for a short
// window so lobby screens polling the status endpoint don't hammer
// Postgres.
func (rc *RedisClient) SaveMatchSnapshot(matchID uint, payload interface{}, ttl time.Duration) error {
	key := redis_utils.FormatMatchSnapshotKey(matchID)
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling match snapshot: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, ttl).Err()
}

// GetMatchSnapshot retrieves a cached match-status payload.
func (rc *RedisClient) GetMatchSnapshot(matchID uint) (json.RawMessage, error) {
	key := redis_utils.FormatMatchSnapshotKey(matchID)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// InvalidateMatchSnapshot drops the cached status after any mutation of
// the match (join, role change, start).
func (rc *RedisClient) InvalidateMatchSnapshot(matchID uint) error {
	return rc.client.Del(rc.ctx, redis_utils.FormatMatchSnapshotKey(matchID)).Err()
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
