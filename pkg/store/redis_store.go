package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"src.protosketch.dev/pkg/store/storedefs"
)

// Prefix of the keys of blobs in Redis.
const redisKeyPrefix = "protosketch:raster:"

// Timeout of each Redis operation.
var redisTimeout = 5 * time.Second

type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store that keeps blobs in the Redis server at addr.
// It pings the server before returning.
func NewRedisStore(addr string) (storedefs.Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	logger.Println("connected to redis at", addr)
	return &redisStore{client}, nil
}

func (s *redisStore) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storedefs.ErrNotFound
	}
	return data, err
}

func (s *redisStore) Put(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.SetNX(ctx, redisKeyPrefix+key, data, 0).Err()
}

func (s *redisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
