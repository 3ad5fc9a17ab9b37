// Package counter lleva contadores mensuales de uso (transacciones
// reenviadas, por plataforma y por cliente). Es contabilidad best-effort:
// las escrituras son fire-and-forget y jamás afectan el camino de la
// request.
package counter

import (
	"context"
	"fmt"
	"time"
)

// Store incrementa contadores nombrados.
type Store interface {
	Increment(ctx context.Context, key string) error
}

// MonthlyKeys devuelve las claves a incrementar por un broadcast del
// cliente dado en el instante dado: el total de la plataforma y el total
// del cliente, ambos del mes corriente. El mes se toma en UTC para que el
// corte no dependa de la zona horaria del proceso.
func MonthlyKeys(clientID string, at time.Time) []string {
	at = at.UTC()
	month := fmt.Sprintf("%d-%d", int(at.Month()), at.Year())
	return []string{
		"ledgerconnect:tx:" + month,
		"ledgerconnect:tx:" + month + ":" + clientID,
	}
}

// Bump incrementa ambas claves mensuales sin bloquear al caller.
func Bump(store Store, clientID string) {
	if store == nil {
		return
	}
	keys := MonthlyKeys(clientID, time.Now())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, k := range keys {
			_ = store.Increment(ctx, k) // best-effort
		}
	}()
}
