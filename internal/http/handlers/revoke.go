package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/ledgerconnect/internal/http"
	"github.com/dropDatabas3/ledgerconnect/internal/http/middlewares"
	"github.com/dropDatabas3/ledgerconnect/internal/observability/logger"
	"github.com/dropDatabas3/ledgerconnect/internal/store/core"
)

// RevokeByKind revoca credenciales a granel. La ruta es sólo vía user: el
// que firma el challenge decide, nunca el token de una app.
//
//   - kind=user: todas las credenciales de la identidad autenticada; con
//     clientID en la ruta (o client_id en query) sólo las de esa app;
//   - kind=app: todas las credenciales de una app completa, de todas sus
//     identidades. Sólo puede hacerlo la identidad dueña de la app.
//
// POST /api/token/revoke/{kind}/{clientID?}
func (a *API) RevokeByKind(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetPrincipal(r.Context())

	target := chi.URLParam(r, "clientID")
	if target == "" {
		target = r.URL.Query().Get("client_id")
	}

	switch chi.URLParam(r, "kind") {
	case "user":
		// target vacío = barrido de la identidad en todas las apps.
		if err := a.Store.Revoke(r.Context(), target, p.Identity); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		logger.From(r.Context()).Info("credenciales de identidad revocadas",
			logger.Identity(p.Identity), logger.ClientID(target))
		httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})

	case "app":
		if target == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "client_id is required")
			return
		}

		client, err := a.Store.GetClient(r.Context(), target)
		if errors.Is(err, core.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_client", "Unknown client application")
			return
		}
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		if client.Owner != p.Identity {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized_client",
				"Only the application owner can revoke the whole application")
			return
		}

		// Identity vacía = barrido de la app completa.
		if err := a.Store.Revoke(r.Context(), client.ID, ""); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		logger.From(r.Context()).Info("app revocada completa",
			logger.ClientID(client.ID), logger.Identity(p.Identity))
		httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "kind must be user or app")
	}
}
