package handlers

import (
	"context"
	"net/http"
	"time"

	httpx "github.com/dropDatabas3/ledgerconnect/internal/http"
)

// Healthz: vivacidad del proceso, sin tocar dependencias.
//
// GET /healthz
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz sondea cada dependencia registrada con un timeout corto y reporta
// el detalle por nombre. Cualquier falla baja el status a 503.
//
// GET /readyz
func (a *API) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	detail := make(map[string]string, len(a.Ready))
	for _, rc := range a.Ready {
		if err := rc.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			detail[rc.Name] = err.Error()
			continue
		}
		detail[rc.Name] = "ok"
	}

	httpx.WriteJSON(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": detail,
	})
}
