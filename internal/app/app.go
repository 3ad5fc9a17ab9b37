// Package app cablea la configuración con todos los componentes del
// servicio y expone el handler HTTP listo para servir.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/ledgerconnect/internal/auth"
	"github.com/dropDatabas3/ledgerconnect/internal/cache"
	"github.com/dropDatabas3/ledgerconnect/internal/config"
	"github.com/dropDatabas3/ledgerconnect/internal/counter"
	"github.com/dropDatabas3/ledgerconnect/internal/http/handlers"
	"github.com/dropDatabas3/ledgerconnect/internal/http/router"
	"github.com/dropDatabas3/ledgerconnect/internal/keys"
	"github.com/dropDatabas3/ledgerconnect/internal/ledger"
	"github.com/dropDatabas3/ledgerconnect/internal/metrics"
	"github.com/dropDatabas3/ledgerconnect/internal/scope"
	"github.com/dropDatabas3/ledgerconnect/internal/store/core"
	"github.com/dropDatabas3/ledgerconnect/internal/store/memory"
	"github.com/dropDatabas3/ledgerconnect/internal/store/pg"
	"github.com/dropDatabas3/ledgerconnect/internal/token"
)

// Container agrupa todo lo construido a partir de la config.
type Container struct {
	Config  *config.Config
	Store   core.Repository
	Cache   cache.Cache
	Handler http.Handler
}

// Build construye el servicio completo. Falla rápido: cualquier dependencia
// inservible corta acá, antes de escuchar.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	custodial, err := keys.ParsePrivateKeyWIF(cfg.Custodial.WIF)
	if err != nil {
		return nil, fmt.Errorf("app: clave custodial inválida: %w", err)
	}

	ch, err := cache.Open(cache.Config{
		Kind: cfg.Cache.Kind,
		Redis: cache.RedisConfig{
			Addr:   cfg.Cache.Redis.Addr,
			DB:     cfg.Cache.Redis.DB,
			Prefix: cfg.Cache.Redis.Prefix,
		},
		Memory: cache.MemoryConfig{DefaultTTL: cfg.Cache.Memory.DefaultTTL},
	})
	if err != nil {
		return nil, err
	}

	var repo core.Repository
	switch cfg.Storage.Driver {
	case "postgres":
		repo, err = pg.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
	default:
		repo = memory.New()
	}

	var counters counter.Store
	if cfg.Counters.Enabled {
		if rc, ok := ch.(*cache.Redis); ok {
			counters = counter.NewRedis(rc.Client())
		}
	}

	directory := ledger.NewDirectory(ledger.DirectoryConfig{
		NodeURL:  cfg.Ledger.NodeURL,
		Timeout:  cfg.LedgerTimeout(),
		Cache:    ch,
		CacheTTL: cfg.AccountCacheTTL(),
	})
	relay := ledger.NewRelay(ledger.RelayConfig{
		RelayURL:  cfg.Ledger.RelayURL,
		Timeout:   cfg.LedgerTimeout(),
		Custodial: custodial,
	})

	issuer := token.NewIssuer(custodial)
	issuer.AccessTTL = cfg.AccessTTL()
	issuer.ChallengeTTL = cfg.ChallengeTTL()

	verifier := auth.NewVerifier(custodial, directory)
	gate := auth.NewGate(verifier, issuer, repo, repo)

	if err := metrics.Register(nil); err != nil {
		return nil, err
	}

	ready := []handlers.ReadyCheck{
		{Name: "store", Check: repo.Ping},
	}
	if rc, ok := ch.(*cache.Redis); ok {
		ready = append(ready, handlers.ReadyCheck{Name: "redis", Check: rc.Ping})
	}

	api := &handlers.API{
		Challenge: auth.NewChallengeIssuer(custodial, issuer, directory),
		Gate:      gate,
		Issuer:    issuer,
		Enforcer:  scope.NewEnforcer(counters),
		Directory: directory,
		Relay:     relay,
		Store:     repo,
		Ready:     ready,
	}

	handler := router.New(router.Config{
		API:                api,
		Gate:               gate,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	return &Container{
		Config:  cfg,
		Store:   repo,
		Cache:   ch,
		Handler: handler,
	}, nil
}

// Close libera las dependencias con estado.
func (c *Container) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}
