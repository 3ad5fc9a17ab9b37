// Package cache provee una abstracción mínima de cache con backend en
// memoria (dev/tests) o Redis (producción).
package cache

import "time"

// Cache es la interfaz común a ambos backends.
type Cache interface {
	Get(k string) ([]byte, bool)
	Set(k string, v []byte, ttl time.Duration)
	Delete(k string)
}

// Config selecciona e inicializa un backend.
type Config struct {
	Kind   string // "memory" | "redis"
	Redis  RedisConfig
	Memory MemoryConfig
}

type RedisConfig struct {
	Addr   string
	DB     int
	Prefix string
}

type MemoryConfig struct {
	DefaultTTL string
}

// Open crea el cache según la config. Default: memoria.
func Open(cfg Config) (Cache, error) {
	switch cfg.Kind {
	case "redis":
		return NewRedis(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix), nil
	default:
		ttl := 2 * time.Minute
		if cfg.Memory.DefaultTTL != "" {
			if d, err := time.ParseDuration(cfg.Memory.DefaultTTL); err == nil {
				ttl = d
			}
		}
		return NewMemory(ttl), nil
	}
}
