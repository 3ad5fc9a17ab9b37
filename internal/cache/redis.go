package cache

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Redis struct {
	c      *rdb.Client
	prefix string
}

func NewRedis(addr string, db int, prefix string) *Redis {
	return &Redis{c: rdb.NewClient(&rdb.Options{Addr: addr, DB: db}), prefix: prefix}
}

func (r *Redis) Get(k string) ([]byte, bool) {
	b, err := r.c.Get(context.Background(), r.prefix+k).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(k string, v []byte, ttl time.Duration) {
	_ = r.c.Set(context.Background(), r.prefix+k, v, ttl).Err()
}

func (r *Redis) Delete(k string) { _ = r.c.Del(context.Background(), r.prefix+k).Err() }

// Ping expone el healthcheck del cliente para /readyz.
func (r *Redis) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Client expone la conexión subyacente para que otros componentes (los
// contadores de uso) compartan el mismo pool.
func (r *Redis) Client() *rdb.Client { return r.c }
