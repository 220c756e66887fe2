package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yiyi75/careerquest/internal/model"
)

const snapshotKeyPrefix = "careerquest:snapshot:"

// RedisStore keeps snapshots in a remote document store keyed per user.
// It is the stand-in for the original cloud sync backend.
type RedisStore struct {
	client  *redis.Client
	userID  string
	timeout time.Duration
}

// Dial connects and verifies the server is reachable before handing the
// client out.
func Dial(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		userID:  "default",
		timeout: 3 * time.Second,
	}
}

func (r *RedisStore) ForUser(userID string) *RedisStore {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "default"
	}
	return &RedisStore{
		client:  r.client,
		userID:  userID,
		timeout: r.timeout,
	}
}

func (r *RedisStore) key() string {
	return snapshotKeyPrefix + r.userID
}

func (r *RedisStore) Load() (*model.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.key()).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", r.key(), err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", r.key(), err)
	}
	snap.Normalize()
	return &snap, nil
}

func (r *RedisStore) Save(snap *model.Snapshot) error {
	if snap == nil {
		return nil
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", r.key(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key(), b, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", r.key(), err)
	}
	return nil
}
