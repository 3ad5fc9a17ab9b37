package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Errores de frontera: los callers distinguen "no existe" de "no se pudo
// consultar" — son respuestas distintas al usuario.
var (
	ErrNotFound    = errors.New("ledger: cuenta inexistente")
	ErrUnreachable = errors.New("ledger: nodo inalcanzable")
)

// rpcClient habla JSON-RPC 2.0 contra un nodo del ledger.
type rpcClient struct {
	url  string
	http *http.Client
}

func newRPCClient(url string, timeout time.Duration) *rpcClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &rpcClient{url: url, http: &http.Client{Timeout: timeout}}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int    `json:"id"`
}

// RPCError es la forma de error que devuelve el nodo.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return fmt.Sprintf("rpc %d: %s", e.Code, e.Message) }

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// call ejecuta un método. Fallas de red se reportan como ErrUnreachable;
// errores RPC del nodo se devuelven como *RPCError.
func (c *rpcClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var out rpcResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: respuesta inválida: %v", ErrUnreachable, err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	return out.Result, nil
}
