// Package router arma el árbol de rutas de la API y la cadena de
// middlewares global.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/ledgerconnect/internal/http/handlers"
	"github.com/dropDatabas3/ledgerconnect/internal/http/middlewares"
)

// Config parametriza el router.
type Config struct {
	API                *handlers.API
	Gate               middlewares.Authenticator
	CORSAllowedOrigins []string
}

// New construye el handler raíz. Las rutas protegidas pasan por la
// compuerta de autenticación; challenge, token y las sondas no.
func New(cfg Config) http.Handler {
	a := cfg.API

	r := chi.NewRouter()

	authed := middlewares.WithAuthentication(cfg.Gate, middlewares.AnyCredential)
	userOnly := middlewares.WithAuthentication(cfg.Gate, middlewares.UserCredential)

	r.Route("/api", func(r chi.Router) {
		// Públicas: el challenge no entrega nada utilizable sin la
		// clave privada, y el canje valida credencial + secreto solo.
		r.Get("/login/challenge", a.LoginChallenge)
		r.Post("/login/challenge", a.LoginChallenge)
		r.Get("/oauth2/token", a.Token)
		r.Post("/oauth2/token", a.Token)

		// Protegidas: cualquiera de las dos vías.
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Get("/me", a.Me)
			r.Put("/me", a.UpdateMe)
			r.Post("/broadcast", a.Broadcast)
			r.Post("/oauth2/token/revoke", a.RevokeToken)
		})

		// Sólo vía user: aprobar apps y revocar a granel hablan en nombre
		// del usuario, un access token de app no alcanza.
		r.Group(func(r chi.Router) {
			r.Use(userOnly)
			r.Get("/oauth2/authorize", a.Authorize)
			r.Post("/oauth2/authorize", a.Authorize)
			r.Post("/token/revoke/{kind}", a.RevokeByKind)
			r.Post("/token/revoke/{kind}/{clientID}", a.RevokeByKind)
		})
	})

	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	return middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithRecover(),
		middlewares.WithLogging(),
		middlewares.WithCORS(cfg.CORSAllowedOrigins),
	)
}
