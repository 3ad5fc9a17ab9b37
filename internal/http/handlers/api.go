// Package handlers implementa los endpoints de la API. Cada handler asume
// que el router ya corrió los middlewares que le corresponden (request id,
// logging, autenticación) y saca el Principal del contexto.
package handlers

import (
	"context"
	"encoding/json"

	"github.com/dropDatabas3/ledgerconnect/internal/auth"
	"github.com/dropDatabas3/ledgerconnect/internal/ledger"
	"github.com/dropDatabas3/ledgerconnect/internal/scope"
	"github.com/dropDatabas3/ledgerconnect/internal/store/core"
	"github.com/dropDatabas3/ledgerconnect/internal/token"
)

// Broadcaster reenvía lotes aprobados al ledger.
type Broadcaster interface {
	Broadcast(ctx context.Context, ops []ledger.Operation) (json.RawMessage, error)
}

// API agrupa las dependencias de todos los handlers.
type API struct {
	Challenge *auth.ChallengeIssuer
	Gate      *auth.Gate
	Issuer    *token.Issuer
	Enforcer  *scope.Enforcer
	Directory auth.AccountDirectory
	Relay     Broadcaster
	Store     core.Repository
	Ready     []ReadyCheck
}

// ReadyCheck es una dependencia que /readyz sondea.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}
