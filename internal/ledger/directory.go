package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/ledgerconnect/internal/cache"
)

// Directory resuelve cuentas del ledger (AccountDirectory). Las respuestas
// se cachean unos segundos y los lookups concurrentes por la misma cuenta
// se colapsan con singleflight: el login por challenge y /me golpean fuerte
// la misma cuenta en ráfagas.
type Directory struct {
	rpc      *rpcClient
	cache    cache.Cache
	cacheTTL time.Duration
	sf       singleflight.Group
}

// DirectoryConfig parametriza el cliente.
type DirectoryConfig struct {
	NodeURL  string
	Timeout  time.Duration
	Cache    cache.Cache
	CacheTTL time.Duration
}

func NewDirectory(cfg DirectoryConfig) *Directory {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Directory{
		rpc:      newRPCClient(cfg.NodeURL, cfg.Timeout),
		cache:    cfg.Cache,
		cacheTTL: ttl,
	}
}

// Lookup devuelve la cuenta con sus tres autoridades.
// ErrNotFound si la identidad no existe; ErrUnreachable si el nodo falla.
func (d *Directory) Lookup(ctx context.Context, name string) (*Account, error) {
	if d.cache != nil {
		if b, ok := d.cache.Get("acct:" + name); ok {
			var acct Account
			if err := json.Unmarshal(b, &acct); err == nil {
				acct.Raw = b
				return &acct, nil
			}
		}
	}

	v, err, _ := d.sf.Do(name, func() (any, error) {
		return d.fetch(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

func (d *Directory) fetch(ctx context.Context, name string) (*Account, error) {
	result, err := d.rpc.call(ctx, "condenser_api.get_accounts", []any{[]string{name}})
	if err != nil {
		if rpcErr, ok := err.(*RPCError); ok {
			return nil, fmt.Errorf("%w: %v", ErrUnreachable, rpcErr)
		}
		return nil, err
	}

	var accounts []json.RawMessage
	if err := json.Unmarshal(result, &accounts); err != nil {
		return nil, fmt.Errorf("%w: respuesta inválida: %v", ErrUnreachable, err)
	}
	if len(accounts) == 0 {
		return nil, ErrNotFound
	}

	var acct Account
	if err := json.Unmarshal(accounts[0], &acct); err != nil {
		return nil, fmt.Errorf("%w: cuenta inválida: %v", ErrUnreachable, err)
	}
	if acct.Name == "" {
		return nil, ErrNotFound
	}
	acct.Raw = accounts[0]

	if d.cache != nil {
		d.cache.Set("acct:"+name, accounts[0], d.cacheTTL)
	}
	return &acct, nil
}
