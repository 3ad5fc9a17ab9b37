package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/ledgerconnect/internal/cache"
	"github.com/dropDatabas3/ledgerconnect/internal/keys"
)

// rpcHandler responde JSON-RPC con la función dada y cuenta las llamadas.
func rpcHandler(t *testing.T, calls *int64, respond func(method string, params json.RawMessage) (any, *RPCError)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)

		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := respond(req.Method, req.Params)
		out := map[string]any{"jsonrpc": "2.0", "id": 1}
		if rpcErr != nil {
			out["error"] = rpcErr
		} else {
			out["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func accountJSON(name string, postingKeys ...string) map[string]any {
	auths := make([][]any, 0, len(postingKeys))
	for _, k := range postingKeys {
		auths = append(auths, []any{k, 1})
	}
	return map[string]any{
		"name":    name,
		"posting": map[string]any{"weight_threshold": 1, "key_auths": auths},
		"active":  map[string]any{"weight_threshold": 1, "key_auths": [][]any{}},
		"owner":   map[string]any{"weight_threshold": 1, "key_auths": [][]any{}},
		"balance": "1.000 STEEM",
	}
}

func TestDirectoryLookup(t *testing.T) {
	priv, err := keys.GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.Public().String()

	var calls int64
	srv := httptest.NewServer(rpcHandler(t, &calls, func(method string, params json.RawMessage) (any, *RPCError) {
		assert.Equal(t, "condenser_api.get_accounts", method)
		return []any{accountJSON("alice", pub)}, nil
	}))
	defer srv.Close()

	d := NewDirectory(DirectoryConfig{
		NodeURL:  srv.URL,
		Cache:    cache.NewMemory(time.Minute),
		CacheTTL: time.Minute,
	})

	acct, err := d.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Name)
	assert.Equal(t, []string{pub}, acct.Posting.Keys())
	// Raw trae la cuenta completa, incluidos campos que no modelamos.
	assert.Contains(t, string(acct.Raw), "balance")

	// Segundo lookup sale del cache: el nodo no se toca de nuevo.
	acct2, err := d.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", acct2.Name)
	assert.Contains(t, string(acct2.Raw), "balance")
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestDirectoryLookupNotFound(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(rpcHandler(t, &calls, func(string, json.RawMessage) (any, *RPCError) {
		return []any{}, nil
	}))
	defer srv.Close()

	d := NewDirectory(DirectoryConfig{NodeURL: srv.URL})
	_, err := d.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectoryLookupNodeDown(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // conexión rechazada

	d := NewDirectory(DirectoryConfig{NodeURL: srv.URL})
	_, err := d.Lookup(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestRelayBroadcastSignsAndForwards(t *testing.T) {
	custodial, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	var calls int64
	var gotTx transaction
	srv := httptest.NewServer(rpcHandler(t, &calls, func(method string, params json.RawMessage) (any, *RPCError) {
		assert.Equal(t, "network_broadcast_api.broadcast_transaction_synchronous", method)
		var list []transaction
		require.NoError(t, json.Unmarshal(params, &list))
		require.Len(t, list, 1)
		gotTx = list[0]
		return map[string]any{"id": "abc123", "block_num": 42}, nil
	}))
	defer srv.Close()

	relay := NewRelay(RelayConfig{RelayURL: srv.URL, Custodial: custodial})
	ops := []Operation{{Type: "vote", Body: map[string]any{"voter": "alice", "author": "bob", "permlink": "p", "weight": float64(100)}}}

	result, err := relay.Broadcast(context.Background(), ops)
	require.NoError(t, err)
	assert.Contains(t, string(result), "abc123")

	// La transacción viajó con la firma custodial sobre el cuerpo sin firmar.
	require.Len(t, gotTx.Signatures, 1)
	require.Len(t, gotTx.Operations, 1)
	assert.Equal(t, "vote", gotTx.Operations[0].Type)

	unsigned, err := json.Marshal(transaction{Operations: gotTx.Operations, Extensions: []any{}})
	require.NoError(t, err)
	assert.True(t, custodial.Public().Verify(keys.Digest(unsigned), gotTx.Signatures[0]))
}

func TestRelayBroadcastUpstreamError(t *testing.T) {
	custodial, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	var calls int64
	srv := httptest.NewServer(rpcHandler(t, &calls, func(string, json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: 10, Message: "assert: missing required posting authority"}
	}))
	defer srv.Close()

	relay := NewRelay(RelayConfig{RelayURL: srv.URL, Custodial: custodial})
	_, err = relay.Broadcast(context.Background(), []Operation{{Type: "vote", Body: map[string]any{}}})

	var bcast *BroadcastError
	require.ErrorAs(t, err, &bcast)
	assert.Contains(t, bcast.Raw, "missing required posting authority")
	assert.Equal(t, "the platform posting authority is not registered for this account", bcast.Description)
}

func TestDescribeUpstreamFallsBackToRaw(t *testing.T) {
	assert.Equal(t, "algo totalmente nuevo", describeUpstream("algo totalmente nuevo"))
	assert.Equal(t, "this transaction was already submitted",
		describeUpstream("assert: Duplicate transaction check failed, tx_id=deadbeef"))
}

func TestOperationTupleJSON(t *testing.T) {
	raw := `["vote",{"voter":"alice","author":"bob","permlink":"p","weight":10000}]`

	var op Operation
	require.NoError(t, json.Unmarshal([]byte(raw), &op))
	assert.Equal(t, "vote", op.Type)
	assert.Equal(t, "alice", op.Body["voter"])

	b, err := json.Marshal(op)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(b))
}

func TestKeyAuthTupleJSON(t *testing.T) {
	var ka KeyAuth
	require.NoError(t, json.Unmarshal([]byte(`["STMfake",3]`), &ka))
	assert.Equal(t, "STMfake", ka.Key)
	assert.Equal(t, uint32(3), ka.Weight)

	_, err := json.Marshal(ka)
	require.NoError(t, err)

	var bad KeyAuth
	assert.Error(t, json.Unmarshal([]byte(`["solo-un-elemento"]`), &bad))
}
