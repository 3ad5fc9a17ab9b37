// Package ledger encapsula la frontera RPC con la red externa: lookup de
// cuentas (AccountDirectory) y broadcast de operaciones firmadas (Relay).
// El ledger se trata como opaco; acá sólo vive lo que la verificación y el
// reenvío necesitan.
package ledger

import (
	"encoding/json"
	"fmt"
)

// Role es uno de los tres niveles de autoridad registrados por cuenta.
type Role string

const (
	RolePosting Role = "posting"
	RoleActive  Role = "active"
	RoleOwner   Role = "owner"
)

// Roles en orden de privilegio ascendente.
var Roles = []Role{RolePosting, RoleActive, RoleOwner}

// ValidRole indica si s nombra un rol de autoridad conocido.
func ValidRole(s string) bool {
	switch Role(s) {
	case RolePosting, RoleActive, RoleOwner:
		return true
	}
	return false
}

// KeyAuth es una entrada [clave, peso] dentro de una autoridad.
type KeyAuth struct {
	Key    string
	Weight uint32
}

// UnmarshalJSON parsea el par posicional ["STM...", peso] del wire.
func (k *KeyAuth) UnmarshalJSON(b []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("ledger: key_auth con %d elementos", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &k.Key); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &k.Weight)
}

func (k KeyAuth) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{k.Key, k.Weight})
}

// Authority es un conjunto de claves con pesos bajo un umbral.
type Authority struct {
	WeightThreshold uint32    `json:"weight_threshold"`
	KeyAuths        []KeyAuth `json:"key_auths"`
}

// Keys devuelve sólo las claves públicas de la autoridad.
func (a Authority) Keys() []string {
	out := make([]string, 0, len(a.KeyAuths))
	for _, ka := range a.KeyAuths {
		out = append(out, ka.Key)
	}
	return out
}

// Account es la vista mínima de una cuenta del ledger que este servicio usa.
type Account struct {
	Name    string          `json:"name"`
	Posting Authority       `json:"posting"`
	Active  Authority       `json:"active"`
	Owner   Authority       `json:"owner"`
	Raw     json.RawMessage `json:"-"`
}

// AuthorityFor devuelve la autoridad del rol pedido.
func (a *Account) AuthorityFor(role Role) Authority {
	switch role {
	case RoleActive:
		return a.Active
	case RoleOwner:
		return a.Owner
	default:
		return a.Posting
	}
}

// Operation es un par (tipo, body) tal como viaja en el wire: ["vote", {...}].
type Operation struct {
	Type string
	Body map[string]any
}

func (o *Operation) UnmarshalJSON(b []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("ledger: operación con %d elementos", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &o.Type); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &o.Body)
}

func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{o.Type, o.Body})
}
