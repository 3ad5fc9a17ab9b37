package token

import (
	"time"

	"github.com/dropDatabas3/ledgerconnect/internal/keys"
)

// Issuer emite las cuatro clases de credencial con la clave custodial.
// Inmutable después de construido; seguro para uso concurrente.
type Issuer struct {
	custodial *keys.PrivateKey

	// AccessTTL es la vigencia de los access tokens.
	AccessTTL time.Duration

	// ChallengeTTL limita challenge y code (efímeros, single-use).
	ChallengeTTL time.Duration

	now func() time.Time
}

func NewIssuer(custodial *keys.PrivateKey) *Issuer {
	return &Issuer{
		custodial:    custodial,
		AccessTTL:    7 * 24 * time.Hour,
		ChallengeTTL: 10 * time.Minute,
		now:          time.Now,
	}
}

// sign construye la assertion firmada y la codifica.
func (i *Issuer) sign(p Payload) (string, error) {
	h, err := Hash(p)
	if err != nil {
		return "", err
	}
	return Encode(Assertion{
		Payload:    p,
		Signatures: []string{i.custodial.Sign(h)},
	})
}

// IssueChallenge emite la credencial efímera de login. No lleva scope ni
// cliente: sólo liga la identidad al momento de emisión.
func (i *Issuer) IssueChallenge(identity string) (string, error) {
	return i.sign(Payload{
		Kind:     KindChallenge,
		Identity: identity,
		IssuedAt: i.now().UTC().Unix(),
	})
}

// IssueAccess emite un access token. scope puede ser nil: el scope efectivo
// se resuelve al usarlo (defaults del cliente), salvo que el token provenga
// de un intercambio code/refresh con scope explícito.
func (i *Issuer) IssueAccess(clientID, identity string, scope []string) (string, error) {
	return i.sign(Payload{
		Kind:     KindAccess,
		Identity: identity,
		ClientID: clientID,
		Scope:    scope,
		IssuedAt: i.now().UTC().Unix(),
	})
}

// IssueRefresh emite un refresh token. Sin expiración temporal: sólo muere
// por revocación explícita.
func (i *Issuer) IssueRefresh(clientID, identity string, scope []string) (string, error) {
	return i.sign(Payload{
		Kind:     KindRefresh,
		Identity: identity,
		ClientID: clientID,
		Scope:    scope,
		IssuedAt: i.now().UTC().Unix(),
	})
}

// IssueCode emite un authorization code de un solo uso.
func (i *Issuer) IssueCode(clientID, identity string, scope []string) (string, error) {
	return i.sign(Payload{
		Kind:     KindCode,
		Identity: identity,
		ClientID: clientID,
		Scope:    scope,
		IssuedAt: i.now().UTC().Unix(),
	})
}

// Expired indica si un payload ya venció según su clase. Los refresh nunca
// vencen por tiempo.
func (i *Issuer) Expired(p Payload) bool {
	issued := time.Unix(p.IssuedAt, 0)
	switch p.Kind {
	case KindAccess:
		return i.now().After(issued.Add(i.AccessTTL))
	case KindChallenge, KindCode:
		return i.now().After(issued.Add(i.ChallengeTTL))
	default:
		return false
	}
}
