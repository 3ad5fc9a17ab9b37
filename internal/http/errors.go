package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/ledgerconnect/internal/auth"
	"github.com/dropDatabas3/ledgerconnect/internal/ledger"
	"github.com/dropDatabas3/ledgerconnect/internal/scope"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		RequestID:        rid,
	})
}

// WriteJSON: respuesta JSON estándar
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON: decodifica JSON de forma tolerante (NO falla por campos
// desconocidos). Valida Content-Type y limita el body a 1MB.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Content-Type debe ser application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, "invalid_json", "json inválido")
		return false
	}
	return true
}

// WriteDomainError traduce la taxonomía de errores de auth/scope/ledger al
// contrato {error, error_description} con el status que corresponde. Es el
// ÚNICO lugar donde se hace ese mapeo.
func WriteDomainError(w http.ResponseWriter, err error) {
	var scopeErr *scope.ScopeError
	var ownErr *scope.OwnershipError
	var bcastErr *ledger.BroadcastError

	switch {
	case errors.Is(err, auth.ErrMalformedCredential):
		WriteError(w, http.StatusUnauthorized, "invalid_grant", "The token has invalid format")
	case errors.Is(err, auth.ErrSignatureInvalid):
		WriteError(w, http.StatusUnauthorized, "invalid_grant", "The token signature could not be verified")
	case errors.Is(err, auth.ErrExpired):
		WriteError(w, http.StatusUnauthorized, "invalid_grant", "The token has expired")
	case errors.Is(err, auth.ErrRevokedOrConsumed):
		WriteError(w, http.StatusUnauthorized, "invalid_grant", "The token has been revoked or already used")
	case errors.Is(err, auth.ErrOwnership):
		WriteError(w, http.StatusUnauthorized, "unauthorized_client", "The credential belongs to another account")
	case errors.Is(err, auth.ErrUnknownClient):
		WriteError(w, http.StatusUnauthorized, "invalid_client", "Unknown client application")
	case errors.Is(err, auth.ErrInvalidRole):
		WriteError(w, http.StatusBadRequest, "invalid_request", "Unknown authority role")
	case errors.Is(err, auth.ErrNoUsableKeys):
		WriteError(w, http.StatusBadRequest, "invalid_request", "The requested role has no usable keys")
	case errors.Is(err, auth.ErrLookupFailed), errors.Is(err, ledger.ErrUnreachable):
		WriteError(w, http.StatusServiceUnavailable, "server_error", "Could not reach the ledger node")
	case errors.Is(err, ledger.ErrNotFound):
		WriteError(w, http.StatusNotFound, "invalid_request", "Account not found")
	case errors.As(err, &scopeErr):
		WriteError(w, http.StatusUnauthorized, "invalid_scope",
			"The operation types "+strings.Join(scopeErr.Types, ", ")+" are outside the authorized scope")
	case errors.As(err, &ownErr):
		WriteError(w, http.StatusUnauthorized, "unauthorized_client", ownErr.Error())
	case errors.As(err, &bcastErr):
		WriteError(w, http.StatusInternalServerError, "server_error", bcastErr.Description)
	default:
		WriteError(w, http.StatusInternalServerError, "server_error", "Internal error")
	}
}
