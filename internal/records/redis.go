package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "flygen:records:"

type redisEnvelope struct {
	Fields     json.RawMessage `json:"fields"`
	ModifiedAt time.Time       `json:"modified_at"`
}

// RedisBackend stores each record as a JSON string under one key.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// NewRedisClient builds a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func redisKey(owner, name string) string {
	return redisKeyPrefix + owner + ":" + name
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (b *RedisBackend) Get(ctx context.Context, owner, name string) (Record, error) {
	raw, err := b.client.Get(ctx, redisKey(owner, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("records: get %s: %w", name, err)
	}
	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Record{}, fmt.Errorf("records: decode %s: %w", name, err)
	}
	return Record{Name: name, Fields: env.Fields, ModifiedAt: env.ModifiedAt}, nil
}

func (b *RedisBackend) Put(ctx context.Context, owner string, rec Record) error {
	raw, err := json.Marshal(redisEnvelope{Fields: rec.Fields, ModifiedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("records: encode %s: %w", rec.Name, err)
	}
	if err := b.client.Set(ctx, redisKey(owner, rec.Name), raw, 0).Err(); err != nil {
		return fmt.Errorf("records: put %s: %w", rec.Name, err)
	}
	return nil
}

var _ Backend = (*RedisBackend)(nil)
