package handlers

import (
	"errors"
	"net/http"
	"strings"

	httpx "github.com/dropDatabas3/ledgerconnect/internal/http"
	"github.com/dropDatabas3/ledgerconnect/internal/http/middlewares"
	"github.com/dropDatabas3/ledgerconnect/internal/metrics"
	"github.com/dropDatabas3/ledgerconnect/internal/observability/logger"
	"github.com/dropDatabas3/ledgerconnect/internal/scope"
	"github.com/dropDatabas3/ledgerconnect/internal/store/core"
	"github.com/dropDatabas3/ledgerconnect/internal/token"
)

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	ExpiresIn    int64    `json:"expires_in"`
	Username     string   `json:"username"`
	Scope        []string `json:"scope,omitempty"`
	RefreshToken string   `json:"refresh_token,omitempty"`
}

// Authorize emite la aprobación de un usuario autenticado hacia una app:
// un code canjeable (response_type=code, default) o directamente un access
// token (response_type=token). El scope pedido no puede exceder las
// operaciones autorizadas de la app.
//
// GET|POST /api/oauth2/authorize {client_id, scope, response_type}
func (a *API) Authorize(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetPrincipal(r.Context())

	req := requestParams(r)
	if req["client_id"] == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "client_id is required")
		return
	}

	client, err := a.Store.GetClient(r.Context(), req["client_id"])
	if errors.Is(err, core.ErrNotFound) {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_client", "Unknown client application")
		return
	}
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	requested := splitScope(req["scope"])
	if outside := scope.Outside(requested, client.AuthorizedOps); len(outside) > 0 {
		httpx.WriteDomainError(w, &scope.ScopeError{Types: outside})
		return
	}

	switch req["response_type"] {
	case "", "code":
		code, err := a.Issuer.IssueCode(client.ID, p.Identity, requested)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		metrics.TokensIssued.WithLabelValues("code").Inc()
		logger.From(r.Context()).Info("code emitido",
			logger.Identity(p.Identity), logger.ClientID(client.ID))
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"code": code})

	case "token":
		resp, err := a.issueTokens(client.ID, p.Identity, requested, false)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, resp)

	default:
		httpx.WriteError(w, http.StatusBadRequest, "unsupported_response_type",
			"response_type must be code or token")
	}
}

// Token canjea un code o un refresh token por un access token nuevo.
// Los codes son de un solo uso; el refresh sólo aparece en la respuesta
// cuando el grant es un code con scope offline.
//
// GET|POST /api/oauth2/token {code | refresh_token, client_id, client_secret}
func (a *API) Token(w http.ResponseWriter, r *http.Request) {
	req := requestParams(r)

	raw := req["code"]
	kind := token.KindCode
	if raw == "" {
		raw = req["refresh_token"]
		kind = token.KindRefresh
	}
	if raw == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code or refresh_token is required")
		return
	}

	p, err := a.Gate.Exchange(r.Context(), raw, kind, req["client_id"], req["client_secret"])
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	resp, err := a.issueTokens(p.ClientID, p.Identity, p.Scope, kind == token.KindCode)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	logger.From(r.Context()).Info("grant canjeado",
		logger.Identity(p.Identity), logger.ClientID(p.ClientID),
		logger.TokenKind(string(kind)))
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// RevokeToken invalida de acá en adelante las credenciales de la identidad
// autenticada para su app.
//
// POST /api/oauth2/token/revoke
func (a *API) RevokeToken(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetPrincipal(r.Context())
	if p.ClientID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"revocation requires an app credential")
		return
	}

	if err := a.Store.Revoke(r.Context(), p.ClientID, p.Identity); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	logger.From(r.Context()).Info("credenciales revocadas",
		logger.Identity(p.Identity), logger.ClientID(p.ClientID))
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// issueTokens arma la respuesta estándar de emisión. withRefresh sólo se
// honra si el scope incluye offline.
func (a *API) issueTokens(clientID, identity string, scopes []string, withRefresh bool) (*tokenResponse, error) {
	access, err := a.Issuer.IssueAccess(clientID, identity, scopes)
	if err != nil {
		return nil, err
	}
	metrics.TokensIssued.WithLabelValues("access").Inc()

	resp := &tokenResponse{
		AccessToken: access,
		ExpiresIn:   int64(a.Issuer.AccessTTL.Seconds()),
		Username:    identity,
		Scope:       scopes,
	}

	if withRefresh && hasScope(scopes, "offline") {
		refresh, err := a.Issuer.IssueRefresh(clientID, identity, scopes)
		if err != nil {
			return nil, err
		}
		metrics.TokensIssued.WithLabelValues("refresh").Inc()
		resp.RefreshToken = refresh
	}
	return resp, nil
}

func splitScope(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}
