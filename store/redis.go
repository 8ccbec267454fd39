package store

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/metricskey"
	"github.com/redis/go-redis/v9"
)

// The redis store keeps each tool state document as a single Redis value.
// The keys namespace is organized as follows:
// - `/<prefix>/toolstate/<name>` for storing the document
// - `/<prefix>/toolstate` set for tracking document names

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a Store backed by Redis under the given key prefix.
func NewRedisStore(client *redis.Client, prefix string) Store {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) docKey(name string) string {
	return path.Join(m.prefix, "toolstate", name)
}

func (m *redisStore) indexKey() string {
	return path.Join(m.prefix, "toolstate")
}

func (m *redisStore) Load(ctx context.Context, name string, v any) (bool, error) {
	data, err := m.client.Get(ctx, m.docKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to get document from Redis: %s", name)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return false, errors.Wrapf(err, "failed to unmarshal document: %s", name)
	}
	return true, nil
}

func (m *redisStore) Save(ctx context.Context, name string, v any) error {
	started := time.Now()
	defer metricskey.PerfStoreSave.MeasureSince(started, "redis")

	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal document: %s", name)
	}

	pipe := m.client.Pipeline()
	pipe.Set(ctx, m.docKey(name), data, 0)
	pipe.SAdd(ctx, m.indexKey(), name)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to store document in Redis: %s", name)
	}
	return nil
}

func (m *redisStore) Delete(ctx context.Context, name string) error {
	pipe := m.client.Pipeline()
	pipe.Del(ctx, m.docKey(name))
	pipe.SRem(ctx, m.indexKey(), name)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to delete document from Redis: %s", name)
	}
	return nil
}

func (m *redisStore) List(ctx context.Context) ([]string, error) {
	names, err := m.client.SMembers(ctx, m.indexKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list documents from Redis")
	}
	sort.Strings(names)
	return names, nil
}
