package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis backend.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
		return nil, err
	}
	return &RedisStore{client: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) ZAdd(ctx context.Context, set string, members ...Member) error {
	zs := make([]redis.Z, 0, len(members))
	for _, m := range members {
		zs = append(zs, redis.Z{Member: m.Name, Score: m.Score})
	}
	return s.client.ZAdd(ctx, set, zs...).Err()
}

func (s *RedisStore) ZRangeByScore(ctx context.Context, set string, max float64) ([]Member, error) {
	zs, err := s.client.ZRangeByScoreWithScores(ctx, set, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatFloat(max, 'f', -1, 64),
	}).Result()
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		members = append(members, Member{Name: name, Score: z.Score})
	}
	return members, nil
}

func (s *RedisStore) ZRem(ctx context.Context, set string, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(names))
	for _, name := range names {
		args = append(args, name)
	}
	return s.client.ZRem(ctx, set, args...).Err()
}

func (s *RedisStore) ZScore(ctx context.Context, set, name string) (float64, bool, error) {
	score, err := s.client.ZScore(ctx, set, name).Result()
	if err == redis.Nil {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	return score, true, nil
}
