package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWIFRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	wif := priv.WIF()
	assert.True(t, strings.HasPrefix(wif, "5"), "un WIF mainnet arranca con 5")

	parsed, err := ParsePrivateKeyWIF(wif)
	require.NoError(t, err)
	assert.Equal(t, wif, parsed.WIF())
	assert.True(t, priv.Public().Equal(parsed.Public()))
}

func TestParseWIFRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "no-base58-!!", "5JcorruptoPeroBase58valido111111111111111111111111"} {
		_, err := ParsePrivateKeyWIF(raw)
		assert.ErrorIs(t, err, ErrInvalidWIF, raw)
	}
}

func TestPublicKeyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	encoded := priv.Public().String()
	assert.True(t, strings.HasPrefix(encoded, PublicKeyPrefix))

	parsed, err := ParsePublicKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, parsed.String())
}

func TestParsePublicKeyRejectsBadChecksum(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	encoded := priv.Public().String()
	// Alterar el último carácter rompe el checksum.
	mutated := encoded[:len(encoded)-1] + "x"
	if mutated == encoded {
		mutated = encoded[:len(encoded)-1] + "y"
	}
	_, err = ParsePublicKey(mutated)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestSignVerify(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	other, err := GeneratePrivateKey()
	require.NoError(t, err)

	hash := Digest([]byte("mensaje firmado"))
	sig := priv.Sign(hash)

	assert.True(t, priv.Public().Verify(hash, sig))
	assert.False(t, other.Public().Verify(hash, sig), "otra clave no verifica")
	assert.False(t, priv.Public().Verify(Digest([]byte("otro mensaje")), sig))
	assert.False(t, priv.Public().Verify(hash, "nohex"))
}

func TestMemoSealOpenSymmetric(t *testing.T) {
	a, err := GeneratePrivateKey()
	require.NoError(t, err)
	b, err := GeneratePrivateKey()
	require.NoError(t, err)

	sealed, err := Seal(a, b.Public(), []byte("#desafio"))
	require.NoError(t, err)

	// El destinatario abre con su privada y la pública del emisor.
	opened, err := Open(b, a.Public(), sealed)
	require.NoError(t, err)
	assert.Equal(t, "#desafio", string(opened))
}

func TestMemoOpenWrongKeyFails(t *testing.T) {
	a, err := GeneratePrivateKey()
	require.NoError(t, err)
	b, err := GeneratePrivateKey()
	require.NoError(t, err)
	eve, err := GeneratePrivateKey()
	require.NoError(t, err)

	sealed, err := Seal(a, b.Public(), []byte("#desafio"))
	require.NoError(t, err)

	_, err = Open(eve, a.Public(), sealed)
	assert.ErrorIs(t, err, ErrMemoOpen)

	_, err = Open(b, a.Public(), "no-base58-!!")
	assert.ErrorIs(t, err, ErrMemoOpen)
}
