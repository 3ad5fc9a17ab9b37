package handlers

import (
	"net/http"
	"time"

	httpx "github.com/dropDatabas3/ledgerconnect/internal/http"
	"github.com/dropDatabas3/ledgerconnect/internal/http/middlewares"
	"github.com/dropDatabas3/ledgerconnect/internal/ledger"
	"github.com/dropDatabas3/ledgerconnect/internal/metrics"
	"github.com/dropDatabas3/ledgerconnect/internal/observability/logger"
)

// Broadcast valida un lote de operaciones contra el scope y la titularidad
// del principal y, si pasa entero, lo firma con la clave custodial y lo
// reenvía al ledger. El resultado upstream se devuelve verbatim bajo
// "result".
//
// POST /api/broadcast {operations: [["vote", {...}], ...]}
func (a *API) Broadcast(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetPrincipal(r.Context())

	var req struct {
		Operations []ledger.Operation `json:"operations"`
	}
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if len(req.Operations) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "operations is required")
		return
	}

	if err := a.Enforcer.Check(p, req.Operations); err != nil {
		metrics.Broadcasts.WithLabelValues("rejected").Inc()
		httpx.WriteDomainError(w, err)
		return
	}

	start := time.Now()
	result, err := a.Relay.Broadcast(r.Context(), req.Operations)
	metrics.BroadcastLatency.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.Broadcasts.WithLabelValues("error").Inc()
		logger.From(r.Context()).Error("broadcast falló",
			logger.Identity(p.Identity), logger.ClientID(p.ClientID), logger.Err(err))
		httpx.WriteDomainError(w, err)
		return
	}

	metrics.Broadcasts.WithLabelValues("ok").Inc()
	a.Enforcer.Account(p)
	logger.From(r.Context()).Info("lote reenviado",
		logger.Identity(p.Identity), logger.ClientID(p.ClientID),
		logger.Count(len(req.Operations)))

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"result": result})
}
