package counterstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

var redisCounterPrefix string = "topiccounter/"

// RedisCounterStore is an alternative durable backend for multi-process or
// ephemeral-disk deployments. Atomicity of Apply is provided by a
// store-level mutex (the daemon is the only writer for its keys).
type RedisCounterStore struct {
	lk     sync.Mutex
	Client *redis.Client
}

func NewRedisCounterStore(redisURL string) (*RedisCounterStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisCounterStore{
		Client: rdb,
	}, nil
}

func (s *RedisCounterStore) Get(ctx context.Context, chatID string) (Counter, error) {
	var c Counter
	raw, err := s.Client.Get(ctx, redisCounterPrefix+chatID).Bytes()
	if err == redis.Nil {
		return c, nil
	} else if err != nil {
		return c, err
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return Counter{}, fmt.Errorf("decoding counter for chat %s: %w", chatID, err)
	}
	return c, nil
}

func (s *RedisCounterStore) Apply(ctx context.Context, chatID string, fn func(*Counter)) (Counter, error) {
	s.lk.Lock()
	defer s.lk.Unlock()

	c, err := s.Get(ctx, chatID)
	if err != nil {
		return Counter{}, err
	}
	fn(&c)

	raw, err := json.Marshal(c)
	if err != nil {
		return Counter{}, fmt.Errorf("encoding counter for chat %s: %w", chatID, err)
	}
	if err := s.Client.Set(ctx, redisCounterPrefix+chatID, raw, 0).Err(); err != nil {
		return Counter{}, err
	}
	return c, nil
}

func (s *RedisCounterStore) ResetAll(ctx context.Context) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	iter := s.Client.Scan(ctx, 0, redisCounterPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.Client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
