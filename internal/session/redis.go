package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// #region redis-repository

// RedisRepository keeps sessions in Redis as JSON blobs with a TTL, for
// deployments where the bot runs more than one process.
type RedisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisRepository wraps an existing Redis client. A ttl of zero falls
// back to 24h; sessions must not live forever in a shared store.
func NewRedisRepository(rdb *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return sessionPrefix + strconv.FormatInt(chatID, 10)
}

// Get loads the session for chatID; redis.Nil is a miss, not an error.
func (r *RedisRepository) Get(ctx context.Context, chatID int64) (Session, bool, error) {
	data, err := r.rdb.Get(ctx, sessionKey(chatID)).Bytes()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return s, true, nil
}

// Put stores the session under its chat id key, refreshing the TTL.
func (r *RedisRepository) Put(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(s.ChatID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete discards the session for chatID.
func (r *RedisRepository) Delete(ctx context.Context, chatID int64) error {
	if err := r.rdb.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// #endregion redis-repository
