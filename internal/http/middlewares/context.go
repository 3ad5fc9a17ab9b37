package middlewares

import (
	"context"

	"github.com/dropDatabas3/ledgerconnect/internal/auth"
)

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxPrincipal
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestID, rid)
}

// GetRequestID devuelve el request ID inyectado por WithRequestID.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestID).(string); ok {
		return v
	}
	return ""
}

func setPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// GetPrincipal devuelve la identidad autenticada, o nil si la ruta no pasó
// por WithAuthentication.
func GetPrincipal(ctx context.Context) *auth.Principal {
	if v, ok := ctx.Value(ctxPrincipal).(*auth.Principal); ok {
		return v
	}
	return nil
}
