package holdstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis client.  Keys follow the
// hold:{showtimeId}:{userId} scheme and values are JSON hold records;
// expiry is delegated entirely to Redis TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a RedisStore bound to the provided client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get loads one hold.  A missing key returns (nil, nil).  A value that
// fails to decode is treated as missing rather than poisoning checkout.
func (s *RedisStore) Get(ctx context.Context, scheduleID uint64, userID string) (*HoldRecord, error) {
	raw, err := s.client.Get(ctx, Key(scheduleID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec HoldRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

// Put stores a hold with the given TTL.
func (s *RedisStore) Put(ctx context.Context, userID string, rec HoldRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, Key(rec.ScheduleID, userID), raw, ttl).Err()
}

// Scan walks every live hold for one showtime using cursor-based SCAN so
// large keyspaces are not blocked, then fetches values individually.
// Keys that expire between SCAN and GET are skipped.
func (s *RedisStore) Scan(ctx context.Context, scheduleID uint64) (map[string]HoldRecord, error) {
	prefix := KeyPrefix(scheduleID)
	holds := make(map[string]HoldRecord)
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			raw, err := s.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return nil, err
			}
			var rec HoldRecord
			if err := json.Unmarshal([]byte(raw), &rec); err != nil {
				continue
			}
			holds[strings.TrimPrefix(key, prefix)] = rec
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return holds, nil
}

// Delete removes one user's hold.
func (s *RedisStore) Delete(ctx context.Context, scheduleID uint64, userID string) error {
	return s.client.Del(ctx, Key(scheduleID, userID)).Err()
}
