package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/ledgerconnect/internal/keys"
	"github.com/dropDatabas3/ledgerconnect/internal/ledger"
	"github.com/dropDatabas3/ledgerconnect/internal/token"
)

// Challenge es el resultado de emitir un desafío de login: un código sellado
// por cada clave pública registrada en el rol pedido, en el orden en que el
// ledger lista las claves. El usuario demuestra posesión de la privada
// abriendo cualquiera de los códigos.
type Challenge struct {
	Identity string   `json:"username"`
	Codes    []string `json:"codes"`
}

// ChallengeIssuer emite desafíos de login cifrados hacia las claves del rol
// pedido.
type ChallengeIssuer struct {
	custodial *keys.PrivateKey
	issuer    *token.Issuer
	directory AccountDirectory
}

func NewChallengeIssuer(custodial *keys.PrivateKey, issuer *token.Issuer, directory AccountDirectory) *ChallengeIssuer {
	return &ChallengeIssuer{
		custodial: custodial,
		issuer:    issuer,
		directory: directory,
	}
}

// Issue emite un challenge para (identity, role). Un rol desconocido se
// rechaza con ErrInvalidRole en vez de degradar silenciosamente a posting:
// el caller pidió un nivel de autoridad concreto y tiene que enterarse si
// lo escribió mal.
func (c *ChallengeIssuer) Issue(ctx context.Context, identity, role string) (*Challenge, error) {
	if role == "" {
		role = string(ledger.RolePosting)
	}
	if !ledger.ValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	acct, err := c.directory.Lookup(ctx, identity)
	if err != nil {
		return nil, err // ErrNotFound / ErrUnreachable pasan al handler
	}

	tok, err := c.issuer.IssueChallenge(identity)
	if err != nil {
		return nil, err
	}

	// El "#" marca el plaintext como mensaje cifrado de punto a punto,
	// igual que los memos de transferencia del ledger.
	plaintext := []byte("#" + tok)

	var codes []string
	for _, encoded := range acct.AuthorityFor(ledger.Role(role)).Keys() {
		pub, err := keys.ParsePublicKey(encoded)
		if err != nil {
			continue
		}
		sealed, err := keys.Seal(c.custodial, pub, plaintext)
		if err != nil {
			return nil, err
		}
		codes = append(codes, sealed)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoUsableKeys, role)
	}

	return &Challenge{Identity: identity, Codes: codes}, nil
}
