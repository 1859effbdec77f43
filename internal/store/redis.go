package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/keygate/internal/credential"
	"github.com/serroba/keygate/internal/usage"
)

const (
	fieldCreatedAt = "created_at"
	fieldRevokedAt = "revoked_at"
)

// revokeScript sets revoked_at once, and only on keys that were issued.
var revokeScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	redis.call("HSETNX", KEYS[1], ARGV[1], ARGV[2])
end
return 0
`)

// RedisStore is a Redis implementation of credential.Repository and
// usage.EventStore. Keys are hashes; usage events go to a stream.
type RedisStore struct {
	client    *redis.Client
	prefix    string // "apikey:" for key records (hashes)
	eventsKey string // "usage:events" for the usage log (stream)
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    "apikey:",
		eventsKey: "usage:events",
	}
}

func (r *RedisStore) Insert(ctx context.Context, record *credential.Record) (bool, error) {
	return r.client.HSetNX(ctx, r.prefix+string(record.Key), fieldCreatedAt, record.CreatedAt.UnixNano()).Result()
}

func (r *RedisStore) Revoke(ctx context.Context, key credential.APIKey, at time.Time) error {
	return revokeScript.Run(ctx, r.client, []string{r.prefix + string(key)}, fieldRevokedAt, at.UnixNano()).Err()
}

func (r *RedisStore) Get(ctx context.Context, key credential.APIKey) (*credential.Record, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(key)).Result()
	if err != nil {
		return nil, err
	}

	created, ok := fields[fieldCreatedAt]
	if !ok {
		return nil, credential.ErrNotFound
	}

	record := &credential.Record{Key: key}

	nanos, err := strconv.ParseInt(created, 10, 64)
	if err != nil {
		return nil, err
	}

	record.CreatedAt = time.Unix(0, nanos).UTC()

	if revoked, ok := fields[fieldRevokedAt]; ok {
		nanos, err := strconv.ParseInt(revoked, 10, 64)
		if err != nil {
			return nil, err
		}

		at := time.Unix(0, nanos).UTC()
		record.RevokedAt = &at
	}

	return record, nil
}

func (r *RedisStore) AppendUsageEvent(ctx context.Context, event *usage.Event) error {
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.eventsKey,
		Values: map[string]interface{}{
			"id":        event.ID,
			"api_key":   string(event.APIKey),
			"endpoint":  string(event.Endpoint),
			"called_at": event.CalledAt.UnixNano(),
		},
	}).Err()
}

// Migrate is a no-op; Redis needs no schema.
func (r *RedisStore) Migrate(_ context.Context) error {
	return nil
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
