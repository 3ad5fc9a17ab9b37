package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/ledgerconnect/internal/auth"
	"github.com/dropDatabas3/ledgerconnect/internal/metrics"
	"github.com/dropDatabas3/ledgerconnect/internal/observability/logger"
)

// Authenticator es la vista del gate que el middleware necesita.
type Authenticator interface {
	App(ctx context.Context, raw string) (*auth.Principal, error)
	User(ctx context.Context, message, identity, sigHex string) (*auth.Principal, error)
}

// Requirement restringe qué vía de autenticación admite una ruta.
type Requirement int

const (
	// AnyCredential acepta cualquiera de las dos vías.
	AnyCredential Requirement = iota
	// AppCredential exige un access token emitido por el servicio.
	AppCredential
	// UserCredential exige la terna de challenge firmado: operaciones que
	// hablan en nombre del usuario (aprobar apps, revocar a granel) no
	// pueden ejecutarse con el token de una app.
	UserCredential
)

// WithAuthentication protege una ruta con la compuerta de autenticación.
// Las vías posibles son dos, recortadas por req:
//
//   - app: un access token, en el header Authorization (crudo o "Bearer x")
//     o en el query param access_token;
//   - user: la terna message + username + signature en query params, donde
//     message es un challenge firmado por el usuario con su propia clave.
//
// Sin credencial admisible o con credencial inválida responde 401 con el
// contrato {error, error_description}. El Principal queda en el contexto.
func WithAuthentication(gate Authenticator, req Requirement) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authenticate(gate, req, r)
			if err != nil {
				metrics.AuthFailures.WithLabelValues(failureReason(err)).Inc()
				logger.From(r.Context()).Warn("autenticación rechazada", logger.Err(err))
				writeAuthError(w, err)
				return
			}

			ctx := setPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(gate Authenticator, req Requirement, r *http.Request) (*auth.Principal, error) {
	if req != UserCredential {
		if raw := bearerToken(r); raw != "" {
			return gate.App(r.Context(), raw)
		}
	}

	if req != AppCredential {
		q := r.URL.Query()
		message := q.Get("message")
		signature := q.Get("signature")
		if message != "" && signature != "" {
			return gate.User(r.Context(), message, q.Get("username"), signature)
		}
	}

	return nil, auth.ErrMalformedCredential
}

func bearerToken(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, auth.ErrSignatureInvalid):
		return "signature"
	case errors.Is(err, auth.ErrExpired):
		return "expired"
	case errors.Is(err, auth.ErrRevokedOrConsumed):
		return "revoked"
	case errors.Is(err, auth.ErrOwnership):
		return "ownership"
	case errors.Is(err, auth.ErrUnknownClient):
		return "unknown_client"
	case errors.Is(err, auth.ErrLookupFailed):
		return "lookup"
	default:
		return "other"
	}
}

// writeAuthError duplica una porción mínima del mapeo de errores del paquete
// http para no crear un ciclo de imports middlewares -> http -> middlewares.
func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	code := "invalid_grant"
	desc := "The token is invalid"

	switch {
	case errors.Is(err, auth.ErrMalformedCredential):
		desc = "Missing or malformed credential"
	case errors.Is(err, auth.ErrExpired):
		desc = "The token has expired"
	case errors.Is(err, auth.ErrRevokedOrConsumed):
		desc = "The token has been revoked"
	case errors.Is(err, auth.ErrUnknownClient):
		code = "invalid_client"
		desc = "Unknown client application"
	case errors.Is(err, auth.ErrOwnership):
		code = "unauthorized_client"
		desc = "The credential belongs to another account"
	case errors.Is(err, auth.ErrLookupFailed):
		status = http.StatusServiceUnavailable
		code = "server_error"
		desc = "Could not reach the ledger node"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
