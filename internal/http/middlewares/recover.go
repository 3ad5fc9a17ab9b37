package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/ledgerconnect/internal/observability/logger"
)

// WithRecover atrapa panics de handlers, los loguea con stack y responde
// 500 con el contrato de error estándar.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic en handler",
						logger.String("panic", toString(rec)),
						logger.Path(r.URL.Path),
					)
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":             "server_error",
						"error_description": "Internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "panic"
}
