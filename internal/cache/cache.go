package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	re "github.com/redis/go-redis/v9"
)

// Cache stores JSON values under namespaced keys. Get returns nil on a miss.
type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

type Options struct {
	Addr      string // empty disables caching
	Password  string
	DB        int
	Namespace string
}

type redis struct {
	client    *re.Client
	namespace string
}

// New connects to redis, or returns Dummy when no address is configured.
func New(ctx context.Context, o Options) (Cache, error) {
	if o.Addr == "" {
		return Dummy(), nil
	}
	client := re.NewClient(&re.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", o.Addr)
	}
	return &redis{client: client, namespace: o.Namespace}, nil
}

func (r *redis) withNamespace(key string) string {
	if r.namespace == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.namespace, key)
}

func (r *redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "marshal cache value")
	}
	return errors.Wrap(r.client.Set(ctx, r.withNamespace(key), data, ttl).Err(), "redis set")
}

func (r *redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.withNamespace(key)).Bytes()
	if errors.Is(err, re.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}
	return val, nil
}

func (r *redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ns := make([]string, len(keys))
	for i, k := range keys {
		ns[i] = r.withNamespace(k)
	}
	return errors.Wrap(r.client.Del(ctx, ns...).Err(), "redis del")
}

func (r *redis) Close() error {
	return errors.Wrap(r.client.Close(), "redis close")
}

type dummy struct{}

// Dummy never stores anything.
func Dummy() Cache { return dummy{} }

func (dummy) Set(context.Context, string, any, time.Duration) error { return nil }
func (dummy) Get(context.Context, string) ([]byte, error)           { return nil, nil }
func (dummy) Delete(context.Context, ...string) error               { return nil }
func (dummy) Close() error                                          { return nil }
