package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"` // postgres | memory
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Ledger struct {
		NodeURL         string `yaml:"node_url"`
		RelayURL        string `yaml:"relay_url"`
		Timeout         string `yaml:"timeout"`
		AccountCacheTTL string `yaml:"account_cache_ttl"`
	} `yaml:"ledger"`

	Custodial struct {
		// Account es la cuenta del ledger que los usuarios registran
		// como autoridad posting.
		Account string `yaml:"account"`
		// WIF NUNCA va en YAML: sólo por env (CUSTODIAL_WIF).
		WIF string `yaml:"-"`
	} `yaml:"custodial"`

	Token struct {
		AccessTTL    string `yaml:"access_ttl"`
		ChallengeTTL string `yaml:"challenge_ttl"`
	} `yaml:"token"`

	Counters struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"counters"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Ledger.Timeout == "" {
		c.Ledger.Timeout = "10s"
	}
	if c.Ledger.AccountCacheTTL == "" {
		c.Ledger.AccountCacheTTL = "5s"
	}
	if c.Ledger.RelayURL == "" {
		c.Ledger.RelayURL = c.Ledger.NodeURL
	}
	if c.Token.AccessTTL == "" {
		c.Token.AccessTTL = "168h" // 7d
	}
	if c.Token.ChallengeTTL == "" {
		c.Token.ChallengeTTL = "10m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	// validate string durations
	for _, d := range []string{
		c.Cache.Memory.DefaultTTL,
		c.Ledger.Timeout,
		c.Ledger.AccountCacheTTL,
		c.Token.AccessTTL,
		c.Token.ChallengeTTL,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}

	// Overrides por env + validación
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// LEDGER
	if v, ok := getEnvStr("LEDGER_NODE_URL"); ok {
		c.Ledger.NodeURL = v
	}
	if v, ok := getEnvStr("LEDGER_RELAY_URL"); ok {
		c.Ledger.RelayURL = v
	}
	if v, ok := getEnvStr("LEDGER_TIMEOUT"); ok {
		c.Ledger.Timeout = v
	}

	// CUSTODIAL — el WIF viene sólo de acá
	if v, ok := getEnvStr("CUSTODIAL_ACCOUNT"); ok {
		c.Custodial.Account = v
	}
	if v, ok := getEnvStr("CUSTODIAL_WIF"); ok {
		c.Custodial.WIF = v
	}

	// TOKEN
	if v, ok := getEnvStr("TOKEN_ACCESS_TTL"); ok {
		c.Token.AccessTTL = v
	}
	if v, ok := getEnvStr("TOKEN_CHALLENGE_TTL"); ok {
		c.Token.ChallengeTTL = v
	}

	// COUNTERS
	if v, ok := getEnvBool("COUNTERS_ENABLED"); ok {
		c.Counters.Enabled = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// Validate corta temprano la configuración inservible.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Custodial.WIF) == "" {
		return fmt.Errorf("config: CUSTODIAL_WIF es obligatorio")
	}
	if strings.TrimSpace(c.Ledger.NodeURL) == "" {
		return fmt.Errorf("config: ledger.node_url es obligatorio")
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.dsn es obligatorio con driver postgres")
	}
	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return fmt.Errorf("config: cache.redis.addr es obligatorio con kind redis")
	}
	if c.Counters.Enabled && c.Cache.Kind != "redis" {
		return fmt.Errorf("config: counters.enabled requiere cache redis")
	}
	return nil
}

// Durations parseadas. Load ya validó los strings.

func (c *Config) LedgerTimeout() time.Duration   { return mustDur(c.Ledger.Timeout) }
func (c *Config) AccountCacheTTL() time.Duration { return mustDur(c.Ledger.AccountCacheTTL) }
func (c *Config) AccessTTL() time.Duration       { return mustDur(c.Token.AccessTTL) }
func (c *Config) ChallengeTTL() time.Duration    { return mustDur(c.Token.ChallengeTTL) }
func (c *Config) CacheMemoryTTL() time.Duration  { return mustDur(c.Cache.Memory.DefaultTTL) }

func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
