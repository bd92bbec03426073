package redis

import (
	"context"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/pkg/exceptions"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) contracts.RedisRepository {
	return &redisRepository{client: client}
}

// GetHash returns an empty map when the key does not exist.
func (r *redisRepository) GetHash(ctx context.Context, key string) (map[string]string, error) {
	values, err := r.client.HGetAll(ctx, key).Result()
	if err == redis.Nil {
		return map[string]string{}, nil
	} else if err != nil {
		return nil, exceptions.ErrRedisGet(err)
	}
	return values, nil
}

func (r *redisRepository) SetHash(ctx context.Context, key string, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	err := r.client.HSet(ctx, key, values).Err()
	if err != nil {
		return exceptions.ErrRedisSet(err)
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		return exceptions.ErrRedisSet(err)
	}
	return nil
}
