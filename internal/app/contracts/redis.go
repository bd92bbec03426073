package contracts

import (
	"context"
)

type RedisRepository interface {
	GetHash(ctx context.Context, key string) (map[string]string, error)
	SetHash(ctx context.Context, key string, values map[string]interface{}) error
	Delete(ctx context.Context, key string) error
}
