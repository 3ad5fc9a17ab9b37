package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dropDatabas3/ledgerconnect/internal/keys"
)

// Relay reenvía lotes de operaciones ya aprobados, firmados con la clave
// custodial de la plataforma (BroadcastGateway). El modelo de confianza:
// el usuario registró la clave pública de la plataforma como autoridad
// posting en su cuenta, fuera de banda; la plataforma firma en su nombre.
type Relay struct {
	rpc       *rpcClient
	custodial *keys.PrivateKey
}

// RelayConfig parametriza el gateway.
type RelayConfig struct {
	RelayURL  string
	Timeout   time.Duration
	Custodial *keys.PrivateKey
}

func NewRelay(cfg RelayConfig) *Relay {
	return &Relay{
		rpc:       newRPCClient(cfg.RelayURL, cfg.Timeout),
		custodial: cfg.Custodial,
	}
}

// transaction es el sobre que viaja al relay. El relay completa los campos
// de referencia de bloque antes de entrar a la cadena; acá sólo operaciones,
// extensiones y la firma custodial.
type transaction struct {
	Operations []Operation `json:"operations"`
	Extensions []any       `json:"extensions"`
	Signatures []string    `json:"signatures,omitempty"`
}

// Broadcast firma y envía el lote. El resultado upstream se devuelve
// verbatim; los errores upstream se traducen a ErrBroadcast.
func (r *Relay) Broadcast(ctx context.Context, ops []Operation) (json.RawMessage, error) {
	tx := transaction{Operations: ops, Extensions: []any{}}

	unsigned, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}
	tx.Signatures = []string{r.custodial.Sign(keys.Digest(unsigned))}

	result, err := r.rpc.call(ctx, "network_broadcast_api.broadcast_transaction_synchronous", []any{tx})
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return nil, &BroadcastError{Raw: rpcErr.Message, Description: describeUpstream(rpcErr.Message)}
		}
		return nil, err
	}
	return result, nil
}
