package handlers

import (
	"net/http"

	httpx "github.com/dropDatabas3/ledgerconnect/internal/http"
	"github.com/dropDatabas3/ledgerconnect/internal/metrics"
	"github.com/dropDatabas3/ledgerconnect/internal/observability/logger"
)

// LoginChallenge emite un desafío de login cifrado hacia las claves del rol
// pedido. Es el único endpoint de emisión sin autenticación previa: el
// challenge no otorga nada por sí mismo, sólo cifrado que el dueño de la
// clave puede abrir.
//
// GET|POST /api/login/challenge {username, role}
func (a *API) LoginChallenge(w http.ResponseWriter, r *http.Request) {
	p := requestParams(r)
	username, role := p["username"], p["role"]
	if username == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username is required")
		return
	}

	ch, err := a.Challenge.Issue(r.Context(), username, role)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	metrics.TokensIssued.WithLabelValues("challenge").Inc()
	logger.From(r.Context()).Info("challenge emitido",
		logger.Identity(username), logger.Count(len(ch.Codes)))
	httpx.WriteJSON(w, http.StatusOK, ch)
}
