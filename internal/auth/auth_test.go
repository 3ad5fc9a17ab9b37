package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/ledgerconnect/internal/keys"
	"github.com/dropDatabas3/ledgerconnect/internal/ledger"
	"github.com/dropDatabas3/ledgerconnect/internal/store/core"
	"github.com/dropDatabas3/ledgerconnect/internal/store/memory"
	"github.com/dropDatabas3/ledgerconnect/internal/token"
)

type fakeDirectory struct {
	accounts map[string]*ledger.Account
	err      error
}

func (f *fakeDirectory) Lookup(ctx context.Context, name string) (*ledger.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	acct, ok := f.accounts[name]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return acct, nil
}

// fixture arma el mundo mínimo: clave custodial, un usuario con clave
// posting propia, una app registrada y todas las piezas cableadas.
type fixture struct {
	custodial *keys.PrivateKey
	userKey   *keys.PrivateKey
	store     *memory.Store
	directory *fakeDirectory
	issuer    *token.Issuer
	challenge *ChallengeIssuer
	gate      *Gate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	custodial, err := keys.GeneratePrivateKey()
	require.NoError(t, err)
	userKey, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	dir := &fakeDirectory{accounts: map[string]*ledger.Account{
		"alice": {
			Name: "alice",
			Posting: ledger.Authority{
				WeightThreshold: 1,
				KeyAuths:        []ledger.KeyAuth{{Key: custodial.Public().String(), Weight: 1}, {Key: userKey.Public().String(), Weight: 1}},
			},
		},
	}}

	st := memory.New()
	st.AddClient(&core.Client{
		ID:            "busy.app",
		Secret:        "shhh",
		Owner:         "busyowner",
		AuthorizedOps: []string{"vote", "comment", "offline"},
	})

	issuer := token.NewIssuer(custodial)
	verifier := NewVerifier(custodial, dir)

	return &fixture{
		custodial: custodial,
		userKey:   userKey,
		store:     st,
		directory: dir,
		issuer:    issuer,
		challenge: NewChallengeIssuer(custodial, issuer, dir),
		gate:      NewGate(verifier, issuer, st, st),
	}
}

func TestChallengeLoginRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ch, err := f.challenge.Issue(ctx, "alice", "posting")
	require.NoError(t, err)
	require.Equal(t, "alice", ch.Identity)
	require.NotEmpty(t, ch.Codes)

	// El usuario prueba los códigos con su privada; alguno tiene que abrir.
	var opened []byte
	for _, sealed := range ch.Codes {
		if pt, err := keys.Open(f.userKey, f.custodial.Public(), sealed); err == nil {
			opened = pt
			break
		}
	}
	require.NotNil(t, opened, "debe haber un código abrible con la clave del usuario")
	require.True(t, strings.HasPrefix(string(opened), "#"))

	// Firma el texto del challenge y entra por la vía user.
	message := strings.TrimPrefix(string(opened), "#")
	sig := f.userKey.Sign(keys.Digest([]byte(message)))

	p, err := f.gate.User(ctx, message, "alice", sig)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Identity)
	assert.Equal(t, token.KindChallenge, p.Kind)
}

func TestUserGateRejectsForeignIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.issuer.IssueChallenge("alice")
	require.NoError(t, err)
	sig := f.userKey.Sign(keys.Digest([]byte(tok)))

	_, err = f.gate.User(ctx, tok, "mallory", sig)
	assert.ErrorIs(t, err, ErrOwnership)
}

func TestUserGateRejectsForgedChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Challenge firmado por una clave que no es la custodial.
	forger, err := keys.GeneratePrivateKey()
	require.NoError(t, err)
	forged, err := token.NewIssuer(forger).IssueChallenge("alice")
	require.NoError(t, err)

	sig := f.userKey.Sign(keys.Digest([]byte(forged)))
	_, err = f.gate.User(ctx, forged, "alice", sig)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestAppGateRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.issuer.IssueAccess("busy.app", "alice", []string{"vote"})
	require.NoError(t, err)

	p, err := f.gate.App(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Identity)
	assert.Equal(t, "busy.app", p.ClientID)
	assert.Equal(t, []string{"vote"}, p.Scope)
	require.NotNil(t, p.Client)
	assert.Equal(t, "busyowner", p.Client.Owner)
}

func TestAppGateRejectsTamperedToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.issuer.IssueAccess("busy.app", "alice", nil)
	require.NoError(t, err)

	// Cualquier byte alterado tiene que tumbar la credencial.
	mutated := []byte(tok)
	if mutated[10] == 'A' {
		mutated[10] = 'B'
	} else {
		mutated[10] = 'A'
	}
	_, err = f.gate.App(ctx, string(mutated))
	assert.Error(t, err)
}

// Un token acuñado por el usuario con su propia clave posting (que SÍ está
// registrada en el ledger) no autentica como access/code/refresh: lo emitido
// por el servicio sólo lo legitima la firma custodial.
func TestAppGateRejectsUserMintedToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	minted := token.NewIssuer(f.userKey)

	forged, err := minted.IssueAccess("busy.app", "alice", []string{"transfer", "vote"})
	require.NoError(t, err)
	_, err = f.gate.App(ctx, forged)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	forgedRefresh, err := minted.IssueRefresh("busy.app", "alice", []string{"offline"})
	require.NoError(t, err)
	_, err = f.gate.Exchange(ctx, forgedRefresh, token.KindRefresh, "busy.app", "shhh")
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestAppGateRejectsWrongKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.issuer.IssueRefresh("busy.app", "alice", nil)
	require.NoError(t, err)

	_, err = f.gate.App(ctx, tok)
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestAppGateRejectsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.issuer.IssueAccess("busy.app", "alice", nil)
	require.NoError(t, err)

	f.issuer.AccessTTL = -1 // todo lo emitido queda vencido
	_, err = f.gate.App(ctx, tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodeExchangeIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.issuer.IssueCode("busy.app", "alice", []string{"vote"})
	require.NoError(t, err)

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.gate.Exchange(ctx, code, token.KindCode, "busy.app", "shhh"); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	assert.Equal(t, 1, won, "exactamente un canje concurrente debe ganar")
}

func TestExchangeRejectsWrongSecret(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.issuer.IssueCode("busy.app", "alice", nil)
	require.NoError(t, err)

	_, err = f.gate.Exchange(ctx, code, token.KindCode, "busy.app", "nope")
	assert.ErrorIs(t, err, ErrUnknownClient)
}

func TestRefreshRevocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	refresh, err := f.issuer.IssueRefresh("busy.app", "alice", []string{"vote", "offline"})
	require.NoError(t, err)

	_, err = f.gate.Exchange(ctx, refresh, token.KindRefresh, "busy.app", "shhh")
	require.NoError(t, err, "el refresh recién emitido canjea")

	require.NoError(t, f.store.Revoke(ctx, "busy.app", "alice"))

	_, err = f.gate.Exchange(ctx, refresh, token.KindRefresh, "busy.app", "shhh")
	assert.ErrorIs(t, err, ErrRevokedOrConsumed)
}

func TestClientWideRevocationCoversEveryIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var tokens []string
	for i := 0; i < 50; i++ {
		tok, err := f.issuer.IssueAccess("busy.app", fmt.Sprintf("user%d", i), nil)
		require.NoError(t, err)
		tokens = append(tokens, tok)
	}

	// Revocación de cliente completo: identity vacía.
	require.NoError(t, f.store.Revoke(ctx, "busy.app", ""))

	for _, tok := range tokens {
		_, err := f.gate.App(ctx, tok)
		assert.ErrorIs(t, err, ErrRevokedOrConsumed)
	}
}

func TestIdentityWideRevocationCoversEveryClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.AddClient(&core.Client{ID: "other.app", Secret: "x", Owner: "otherowner"})

	tokA, err := f.issuer.IssueAccess("busy.app", "alice", nil)
	require.NoError(t, err)
	tokB, err := f.issuer.IssueAccess("other.app", "alice", nil)
	require.NoError(t, err)
	tokBob, err := f.issuer.IssueAccess("busy.app", "bob", nil)
	require.NoError(t, err)

	// Revocación de identidad completa: client_id vacío.
	require.NoError(t, f.store.Revoke(ctx, "", "alice"))

	_, err = f.gate.App(ctx, tokA)
	assert.ErrorIs(t, err, ErrRevokedOrConsumed)
	_, err = f.gate.App(ctx, tokB)
	assert.ErrorIs(t, err, ErrRevokedOrConsumed)

	// La identidad de al lado no se ve afectada.
	p, err := f.gate.App(ctx, tokBob)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Identity)
}

func TestChallengeRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.challenge.Issue(context.Background(), "alice", "master")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestChallengeUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.challenge.Issue(context.Background(), "ghost", "posting")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestVerifierLookupFailure(t *testing.T) {
	f := newFixture(t)
	f.directory.err = errors.New("nodo caído")

	// Firma de usuario que exige el camino lento: el directorio falla y
	// eso NO puede reportarse como firma inválida.
	tok, err := f.issuer.IssueChallenge("alice")
	require.NoError(t, err)
	sig := f.userKey.Sign(keys.Digest([]byte(tok)))

	_, err = f.gate.User(context.Background(), tok, "alice", sig)
	assert.ErrorIs(t, err, ErrLookupFailed)
}
