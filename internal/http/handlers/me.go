package handlers

import (
	"encoding/json"
	"net/http"

	httpx "github.com/dropDatabas3/ledgerconnect/internal/http"
	"github.com/dropDatabas3/ledgerconnect/internal/http/middlewares"
	"github.com/dropDatabas3/ledgerconnect/internal/scope"
)

// Tope del blob user_metadata por (app, identidad).
const maxMetadataBytes = 64 << 10

type meResponse struct {
	User         string          `json:"user"`
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Account      json.RawMessage `json:"account"`
	Scope        []string        `json:"scope"`
	UserMetadata json.RawMessage `json:"user_metadata"`
}

// Me devuelve el perfil de la identidad autenticada: la cuenta completa del
// ledger tal como la devuelve el nodo, el scope efectivo y el blob de
// metadata que la app guardó para este usuario.
//
// GET /api/me
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetPrincipal(r.Context())

	acct, err := a.Directory.Lookup(r.Context(), p.Identity)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	meta := json.RawMessage("{}")
	if p.ClientID != "" {
		meta, err = a.Store.GetUserMetadata(r.Context(), p.ClientID, p.Identity)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		User:         p.Identity,
		ID:           p.Identity,
		Name:         p.Identity,
		Account:      acct.Raw,
		Scope:        scope.Effective(p),
		UserMetadata: meta,
	})
}

// UpdateMe reemplaza el blob user_metadata de (app, identidad). Sólo tiene
// sentido con credencial de app: la vía user no está ligada a ningún cliente.
//
// PUT /api/me {user_metadata: {...}}
func (a *API) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetPrincipal(r.Context())
	if p.ClientID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"user_metadata requires an app credential")
		return
	}

	var req struct {
		UserMetadata json.RawMessage `json:"user_metadata"`
	}
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if len(req.UserMetadata) == 0 {
		req.UserMetadata = json.RawMessage("{}")
	}
	if len(req.UserMetadata) > maxMetadataBytes {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "user_metadata is too large")
		return
	}

	if err := a.Store.SetUserMetadata(r.Context(), p.ClientID, p.Identity, req.UserMetadata); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	acct, err := a.Directory.Lookup(r.Context(), p.Identity)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		User:         p.Identity,
		ID:           p.Identity,
		Name:         p.Identity,
		Account:      acct.Raw,
		Scope:        scope.Effective(p),
		UserMetadata: req.UserMetadata,
	})
}
