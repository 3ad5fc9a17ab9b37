package keys

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/nacl/secretbox"
)

// Sellado de códigos de challenge: cifrado autenticado (nacl/secretbox) con
// una clave simétrica derivada del secreto ECDH entre la clave custodial y
// una clave pública registrada de la identidad. Sólo quien posea la privada
// correspondiente puede recuperar el secreto y abrir el código.

const memoNonceSize = 24

var ErrMemoOpen = errors.New("keys: no se pudo abrir el código")

// sharedKey deriva la clave secretbox: sha256(ECDH(priv, pub)).
func sharedKey(priv *PrivateKey, pub *PublicKey) [32]byte {
	return sha256.Sum256(secp256k1.GenerateSharedSecret(priv.raw, pub.raw))
}

// Seal cifra message para el dueño de pub y devuelve base58(nonce || caja).
func Seal(priv *PrivateKey, pub *PublicKey, message []byte) (string, error) {
	key := sharedKey(priv, pub)

	var nonce [memoNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("keys: nonce random: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], message, &nonce, &key)
	return base58.Encode(sealed), nil
}

// Open descifra un código sellado con la clave complementaria del par ECDH.
// Es simétrico: Open(privB, pubA, Seal(privA, pubB, m)) == m.
func Open(priv *PrivateKey, pub *PublicKey, code string) ([]byte, error) {
	raw, err := base58.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemoOpen, err)
	}
	if len(raw) <= memoNonceSize {
		return nil, ErrMemoOpen
	}

	key := sharedKey(priv, pub)

	var nonce [memoNonceSize]byte
	copy(nonce[:], raw[:memoNonceSize])

	message, ok := secretbox.Open(nil, raw[memoNonceSize:], &nonce, &key)
	if !ok {
		return nil, ErrMemoOpen
	}
	return message, nil
}
