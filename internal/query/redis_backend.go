package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix  = "qcm:query:"
	defaultRedisChannel = "qcm:query:events"
	scanBatch           = 200
)

// RedisBackend persists query records in Redis and fans invalidations out to
// every process sharing the same instance over pub/sub.
type RedisBackend struct {
	client  *redis.Client
	prefix  string
	channel string
	ttl     time.Duration
	origin  string
}

// RedisOptions configures RedisBackend.
type RedisOptions struct {
	Prefix  string
	Channel string
	// TTL bounds how long a record survives without being refreshed.
	TTL time.Duration
}

type event struct {
	Op     string `json:"op"`
	Key    Key    `json:"key"`
	Origin string `json:"origin"`
}

const (
	opInvalidate = "invalidate"
	opRemove     = "remove"
)

// NewRedisBackend wraps client.
func NewRedisBackend(client *redis.Client, opts RedisOptions) *RedisBackend {
	if opts.Prefix == "" {
		opts.Prefix = defaultRedisPrefix
	}
	if opts.Channel == "" {
		opts.Channel = defaultRedisChannel
	}
	return &RedisBackend{
		client:  client,
		prefix:  opts.Prefix,
		channel: opts.Channel,
		ttl:     opts.TTL,
		origin:  uuid.NewString(),
	}
}

func (b *RedisBackend) redisKey(key Key) string {
	return b.prefix + key.String()
}

func (b *RedisBackend) Load(ctx context.Context, key Key) (Record, bool, error) {
	raw, err := b.client.Get(ctx, b.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("query: redis get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("query: decode record: %w", err)
	}
	return rec, true, nil
}

func (b *RedisBackend) Save(ctx context.Context, key Key, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("query: encode record: %w", err)
	}
	if err := b.client.Set(ctx, b.redisKey(key), raw, b.ttl).Err(); err != nil {
		return fmt.Errorf("query: redis set: %w", err)
	}
	return nil
}

// Invalidate deletes every record under prefix and notifies subscribers.
func (b *RedisBackend) Invalidate(ctx context.Context, prefix Key) error {
	pattern := b.redisKey(prefix) + "*"
	var cursor uint64
	for {
		keys, next, err := b.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("query: redis scan: %w", err)
		}
		matched := make([]string, 0, len(keys))
		for _, rk := range keys {
			k, err := ParseKey(strings.TrimPrefix(rk, b.prefix))
			if err != nil || !k.HasPrefix(prefix) {
				continue
			}
			matched = append(matched, rk)
		}
		if len(matched) > 0 {
			if err := b.client.Del(ctx, matched...).Err(); err != nil {
				return fmt.Errorf("query: redis del: %w", err)
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return b.publish(ctx, opInvalidate, prefix)
}

// Remove deletes one record and notifies subscribers.
func (b *RedisBackend) Remove(ctx context.Context, key Key) error {
	if err := b.client.Del(ctx, b.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("query: redis del: %w", err)
	}
	return b.publish(ctx, opRemove, key)
}

func (b *RedisBackend) publish(ctx context.Context, op string, key Key) error {
	raw, err := json.Marshal(event{Op: op, Key: key, Origin: b.origin})
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("query: redis publish: %w", err)
	}
	return nil
}

// Listen applies invalidations published by other processes to cache until
// ctx is done. It returns once the subscription is established.
func (b *RedisBackend) Listen(ctx context.Context, cache *Cache, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("query: subscribe %s: %w", b.channel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					logger.Warn("query event decode", slog.Any("error", err))
					continue
				}
				if evt.Origin == b.origin {
					continue
				}
				switch evt.Op {
				case opInvalidate:
					cache.invalidateLocal(evt.Key)
				case opRemove:
					cache.removeLocal(evt.Key)
				}
			}
		}
	}()
	return nil
}
