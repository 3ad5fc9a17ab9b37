package counter

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis implementa Store con INCR. Las claves ya vienen con el prefijo del
// servicio, no se aplica otro.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Increment(ctx context.Context, key string) error {
	return r.client.Incr(ctx, key).Err()
}
