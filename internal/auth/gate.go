package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/ledgerconnect/internal/keys"
	"github.com/dropDatabas3/ledgerconnect/internal/store/core"
	"github.com/dropDatabas3/ledgerconnect/internal/token"
)

// Principal es la identidad autenticada que emerge de la compuerta. Client
// viene resuelto cuando la credencial está ligada a una app.
type Principal struct {
	Identity string
	ClientID string
	Scope    []string
	Kind     token.Kind
	IssuedAt time.Time
	Client   *core.Client
}

// Gate es la compuerta única de autenticación: toda request entra por una
// de sus tres vías (app, user, exchange). Cada vía termina en un Principal
// o en un error de la taxonomía de errors.go.
type Gate struct {
	verifier *Verifier
	issuer   *token.Issuer
	clients  core.ClientRepository
	revokes  core.RevocationRepository
}

func NewGate(verifier *Verifier, issuer *token.Issuer, clients core.ClientRepository, revokes core.RevocationRepository) *Gate {
	return &Gate{verifier: verifier, issuer: issuer, clients: clients, revokes: revokes}
}

// App autentica con un access token emitido por este servicio.
func (g *Gate) App(ctx context.Context, raw string) (*Principal, error) {
	a, err := token.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if a.Payload.Kind != token.KindAccess {
		return nil, fmt.Errorf("%w: se esperaba access, llegó %s", ErrMalformedCredential, a.Payload.Kind)
	}
	p, err := g.verify(ctx, a)
	if err != nil {
		return nil, err
	}
	return g.bindClient(ctx, p)
}

// User autentica con la terna (message, identity, signature): el usuario
// firmó con su propia clave el texto de un challenge vigente. La firma se
// comprueba contra las autoridades registradas de la cuenta en el ledger.
func (g *Gate) User(ctx context.Context, message, identity, sigHex string) (*Principal, error) {
	a, err := token.Decode(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if a.Payload.Kind != token.KindChallenge {
		return nil, fmt.Errorf("%w: se esperaba challenge, llegó %s", ErrMalformedCredential, a.Payload.Kind)
	}

	// Primero la legitimidad del challenge mismo: tiene que haber salido
	// de acá, firmado con la custodial.
	h, err := token.Hash(a.Payload)
	if err != nil {
		return nil, err
	}
	if !g.verifier.VerifyCustodial(h, a.Signatures[0]) {
		return nil, ErrSignatureInvalid
	}
	if identity != "" && identity != a.Payload.Identity {
		return nil, fmt.Errorf("%w: el challenge es de %s", ErrOwnership, a.Payload.Identity)
	}
	if g.issuer.Expired(a.Payload) {
		return nil, ErrExpired
	}

	// Después la firma del usuario sobre el texto completo del challenge.
	ok, err := g.verifier.Verify(ctx, a.Payload.Identity, keys.Digest([]byte(message)), sigHex)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSignatureInvalid
	}

	return &Principal{
		Identity: a.Payload.Identity,
		Kind:     token.KindChallenge,
		IssuedAt: time.Unix(a.Payload.IssuedAt, 0),
	}, nil
}

// Exchange canjea un code o un refresh por un Principal desde el cual
// emitir nuevos tokens. Los codes son de un solo uso: de N canjes
// concurrentes del mismo code, exactamente uno sale de acá con éxito.
func (g *Gate) Exchange(ctx context.Context, raw string, want token.Kind, clientID, clientSecret string) (*Principal, error) {
	if want != token.KindCode && want != token.KindRefresh {
		return nil, fmt.Errorf("%w: clase no canjeable %s", ErrMalformedCredential, want)
	}
	a, err := token.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if a.Payload.Kind != want {
		return nil, fmt.Errorf("%w: se esperaba %s, llegó %s", ErrMalformedCredential, want, a.Payload.Kind)
	}
	if clientID != "" && clientID != a.Payload.ClientID {
		return nil, fmt.Errorf("%w: la credencial es del cliente %s", ErrOwnership, a.Payload.ClientID)
	}

	p, err := g.verify(ctx, a)
	if err != nil {
		return nil, err
	}
	p, err = g.bindClient(ctx, p)
	if err != nil {
		return nil, err
	}
	if !p.Client.Public && p.Client.Secret != clientSecret {
		return nil, ErrUnknownClient
	}

	if want == token.KindCode {
		fresh, err := g.revokes.ConsumeCode(ctx, token.Fingerprint(raw))
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, fmt.Errorf("%w: code ya canjeado", ErrRevokedOrConsumed)
		}
	}
	return p, nil
}

// verify cubre lo común a credenciales emitidas por el servicio: firma
// custodial, vencimiento y revocación. Acá sólo legitima la clave custodial;
// el camino lento contra las autoridades del ledger es exclusivo de la vía
// user, si entrara acá cualquier cuenta del ledger podría acuñarse sus
// propios access tokens con el scope que quisiera.
func (g *Gate) verify(ctx context.Context, a *token.Assertion) (*Principal, error) {
	h, err := token.Hash(a.Payload)
	if err != nil {
		return nil, err
	}
	if !g.verifier.VerifyCustodial(h, a.Signatures[0]) {
		return nil, ErrSignatureInvalid
	}
	if g.issuer.Expired(a.Payload) {
		return nil, ErrExpired
	}

	issued := time.Unix(a.Payload.IssuedAt, 0)
	revoked, err := g.revokes.IsRevoked(ctx, a.Payload.ClientID, a.Payload.Identity, issued)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedOrConsumed
	}

	return &Principal{
		Identity: a.Payload.Identity,
		ClientID: a.Payload.ClientID,
		Scope:    a.Payload.Scope,
		Kind:     a.Payload.Kind,
		IssuedAt: issued,
	}, nil
}

// bindClient resuelve la app de la credencial. Cliente inexistente corta
// acá: un token huérfano no autentica a nadie.
func (g *Gate) bindClient(ctx context.Context, p *Principal) (*Principal, error) {
	client, err := g.clients.GetClient(ctx, p.ClientID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, p.ClientID)
	}
	if err != nil {
		return nil, err
	}
	p.Client = client
	return p, nil
}
