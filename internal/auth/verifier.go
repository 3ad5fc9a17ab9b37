package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/ledgerconnect/internal/keys"
	"github.com/dropDatabas3/ledgerconnect/internal/ledger"
)

// AccountDirectory es lo único que el verificador necesita del ledger.
type AccountDirectory interface {
	Lookup(ctx context.Context, name string) (*ledger.Account, error)
}

// Verifier decide si una firma sobre un mensaje proviene de una identidad.
// Dos caminos: el rápido contra la clave pública custodial (cubre todas las
// credenciales emitidas por este servicio, sin red), y el lento contra las
// claves registradas de la cuenta en el ledger (cubre firmas hechas por el
// usuario con sus propias claves).
type Verifier struct {
	custodialPub *keys.PublicKey
	directory    AccountDirectory
}

func NewVerifier(custodial *keys.PrivateKey, directory AccountDirectory) *Verifier {
	return &Verifier{
		custodialPub: custodial.Public(),
		directory:    directory,
	}
}

// VerifyCustodial comprueba la firma contra la clave custodial solamente.
// No toca la red.
func (v *Verifier) VerifyCustodial(hash []byte, sigHex string) bool {
	return v.custodialPub.Verify(hash, sigHex)
}

// Verify comprueba la firma contra la custodial primero y, si no matchea,
// contra cada clave de las tres autoridades de la cuenta. Devuelve false
// (sin error) cuando ninguna clave firma; ErrLookupFailed sólo cuando el
// directorio no pudo responder. ErrNotFound del directorio cuenta como
// no-match: una identidad inexistente no puede haber firmado nada.
func (v *Verifier) Verify(ctx context.Context, identity string, hash []byte, sigHex string) (bool, error) {
	if v.custodialPub.Verify(hash, sigHex) {
		return true, nil
	}

	acct, err := v.directory.Lookup(ctx, identity)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	for _, role := range ledger.Roles {
		for _, encoded := range acct.AuthorityFor(role).Keys() {
			pub, err := keys.ParsePublicKey(encoded)
			if err != nil {
				continue // clave corrupta en cadena: se ignora
			}
			if pub.Verify(hash, sigHex) {
				return true, nil
			}
		}
	}
	return false, nil
}
