package scope

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/ledgerconnect/internal/auth"
	"github.com/dropDatabas3/ledgerconnect/internal/counter"
	"github.com/dropDatabas3/ledgerconnect/internal/ledger"
)

// ScopeError lista TODOS los tipos de operación del lote que quedaron fuera
// del scope efectivo, no sólo el primero: el integrador corrige todo de una.
type ScopeError struct {
	Types []string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("scope: operaciones fuera de scope: %s", strings.Join(e.Types, ", "))
}

// OwnershipError: una operación nombra como actor a otra cuenta.
type OwnershipError struct {
	Op    string
	Field string
	Actor string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("scope: la operación %s actúa como %q en el campo %s", e.Op, e.Actor, e.Field)
}

// Enforcer aplica scope y titularidad sobre lotes de operaciones y lleva la
// contabilidad mensual de los que pasan.
type Enforcer struct {
	counters counter.Store
}

func NewEnforcer(counters counter.Store) *Enforcer {
	return &Enforcer{counters: counters}
}

// Effective resuelve el scope con el que actúa un principal: el de su
// credencial si trae uno, si no las operaciones autorizadas de la app, y en
// última instancia el set default.
func Effective(p *auth.Principal) []string {
	if len(p.Scope) > 0 {
		return p.Scope
	}
	if p.Client != nil && len(p.Client.AuthorizedOps) > 0 {
		return p.Client.AuthorizedOps
	}
	return DefaultOperations
}

// Outside devuelve los elementos de requested que no están en allowed.
// Se usa al emitir credenciales: el scope pedido no puede exceder las
// operaciones autorizadas de la app.
func Outside(requested, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range requested {
		if _, ok := set[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// Check valida el lote completo contra el principal. Primero junta todas
// las violaciones de scope; si no hay, recién ahí valida titularidad
// operación por operación.
func (e *Enforcer) Check(p *auth.Principal, ops []ledger.Operation) error {
	allowed := make(map[string]struct{})
	for _, s := range Effective(p) {
		allowed[s] = struct{}{}
	}

	var outside []string
	seen := make(map[string]struct{})
	for _, op := range ops {
		if _, ok := allowed[op.Type]; ok {
			continue
		}
		if _, dup := seen[op.Type]; dup {
			continue
		}
		seen[op.Type] = struct{}{}
		outside = append(outside, op.Type)
	}
	if len(outside) > 0 {
		return &ScopeError{Types: outside}
	}

	for _, op := range ops {
		if err := checkOwnership(p.Identity, op); err != nil {
			return err
		}
	}
	return nil
}

// Account registra un broadcast aceptado en los contadores mensuales de la
// plataforma y del cliente. Best-effort: nunca bloquea ni falla la request.
func (e *Enforcer) Account(p *auth.Principal) {
	counter.Bump(e.counters, p.ClientID)
}

func checkOwnership(identity string, op ledger.Operation) error {
	if field, ok := actorFields[op.Type]; ok {
		actor, _ := op.Body[field].(string)
		if actor != identity {
			return &OwnershipError{Op: op.Type, Field: field, Actor: actor}
		}
	}

	for _, field := range arrayActorFields[op.Type] {
		list, ok := op.Body[field].([]any)
		if !ok {
			continue
		}
		for _, entry := range list {
			actor, _ := entry.(string)
			if actor != identity {
				return &OwnershipError{Op: op.Type, Field: field, Actor: actor}
			}
		}
	}
	return nil
}
