package cache

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vytor/uptriv/internal/logger"
)

// PuzzleMemo remembers the serialized puzzle of a (day, difficulty) key so that
// first requests of other users skip the database scan. It is never the source of truth.
type PuzzleMemo interface {
	Get(ctx context.Context, day, difficulty string) (content string, ok bool, err error)
	Put(ctx context.Context, day, difficulty, content string) error
}

// RedisMemo stores puzzle content as plain string keys:
// SET uptriv:puzzle:{day}:{difficulty} {content} EX ttl
type RedisMemo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMemo(client *redis.Client, ttl time.Duration) *RedisMemo {
	return &RedisMemo{client: client, ttl: ttl}
}

func (m *RedisMemo) Get(ctx context.Context, day, difficulty string) (string, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("memo")

	content, err := m.client.Get(ctx, key(day, difficulty)).Result()
	if errors.Is(err, redis.Nil) {
		log.Debug("memo miss: day=%s, difficulty=%s", day, difficulty)
		return "", false, nil
	}
	if err != nil {
		log.Warn("memo get failed: %v", err)
		return "", false, err
	}
	log.Debug("memo hit: day=%s, difficulty=%s", day, difficulty)
	return content, true, nil
}

// Put stores content unless the key is already set, keeping the first writer's bytes.
func (m *RedisMemo) Put(ctx context.Context, day, difficulty, content string) error {
	log := logger.FromContext(ctx).WithPrefix("memo")

	if err := m.client.SetNX(ctx, key(day, difficulty), content, m.ttlWithJitter()).Err(); err != nil {
		log.Warn("memo put failed: %v", err)
		return err
	}
	return nil
}

func (m *RedisMemo) ttlWithJitter() time.Duration {
	if m.ttl <= 0 {
		return 0
	}
	jitterMax := int64(m.ttl) / 10
	return m.ttl + time.Duration(rand.Int64N(jitterMax+1))
}

func key(day, difficulty string) string {
	return "uptriv:puzzle:" + day + ":" + difficulty
}

// NopMemo is used when no Redis address is configured.
type NopMemo struct{}

func (NopMemo) Get(context.Context, string, string) (string, bool, error) { return "", false, nil }
func (NopMemo) Put(context.Context, string, string, string) error         { return nil }

// NewClient builds a Redis client, or returns nil when addr is empty.
func NewClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewMemo picks the Redis memo when client is set and the no-op memo otherwise.
func NewMemo(client *redis.Client, ttl time.Duration) PuzzleMemo {
	if client == nil {
		return NopMemo{}
	}
	return NewRedisMemo(client, ttl)
}
