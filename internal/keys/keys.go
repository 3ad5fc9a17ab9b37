// Package keys implementa el manejo de claves del ledger: claves secp256k1
// en formato WIF (privadas) y prefijadas base58-check (públicas), firmas
// compactas recuperables y el secreto compartido ECDH usado para sellar
// códigos de challenge.
package keys

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // checksum del formato de clave pública del ledger
)

const (
	// PublicKeyPrefix es el prefijo de red de las claves públicas del ledger.
	PublicKeyPrefix = "STM"

	// wifVersion es el byte de versión del formato WIF.
	wifVersion = 0x80
)

var (
	ErrInvalidWIF       = errors.New("keys: WIF inválida")
	ErrInvalidPublicKey = errors.New("keys: clave pública inválida")
)

// PrivateKey envuelve una clave privada secp256k1.
type PrivateKey struct {
	raw *secp256k1.PrivateKey
}

// PublicKey envuelve una clave pública secp256k1.
type PublicKey struct {
	raw *secp256k1.PublicKey
}

// GeneratePrivateKey crea una clave privada nueva (sólo tooling/tests).
func GeneratePrivateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{raw: k}, nil
}

// ParsePrivateKeyWIF decodifica una clave privada en formato WIF:
// base58(0x80 || priv[32] || sha256d(0x80||priv)[:4]).
func ParsePrivateKeyWIF(wif string) (*PrivateKey, error) {
	b, err := base58.Decode(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWIF, err)
	}
	if len(b) != 1+32+4 || b[0] != wifVersion {
		return nil, ErrInvalidWIF
	}
	payload, checksum := b[:33], b[33:]
	if !bytes.Equal(doubleSHA256(payload)[:4], checksum) {
		return nil, fmt.Errorf("%w: checksum", ErrInvalidWIF)
	}
	return &PrivateKey{raw: secp256k1.PrivKeyFromBytes(payload[1:])}, nil
}

// WIF serializa la clave privada en formato WIF.
func (k *PrivateKey) WIF() string {
	payload := make([]byte, 0, 33)
	payload = append(payload, wifVersion)
	payload = append(payload, k.raw.Serialize()...)
	return base58.Encode(append(payload, doubleSHA256(payload)[:4]...))
}

// Public devuelve la clave pública correspondiente.
func (k *PrivateKey) Public() *PublicKey {
	return &PublicKey{raw: k.raw.PubKey()}
}

// ParsePublicKey decodifica una clave pública prefijada:
// "STM" + base58(pub33 || ripemd160(pub33)[:4]).
func ParsePublicKey(s string) (*PublicKey, error) {
	if len(s) <= len(PublicKeyPrefix) || s[:len(PublicKeyPrefix)] != PublicKeyPrefix {
		return nil, ErrInvalidPublicKey
	}
	b, err := base58.Decode(s[len(PublicKeyPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(b) != 33+4 {
		return nil, ErrInvalidPublicKey
	}
	payload, checksum := b[:33], b[33:]
	if !bytes.Equal(ripemd160Sum(payload)[:4], checksum) {
		return nil, fmt.Errorf("%w: checksum", ErrInvalidPublicKey)
	}
	pub, err := secp256k1.ParsePubKey(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return &PublicKey{raw: pub}, nil
}

// String serializa la clave pública al formato prefijado del ledger.
func (k *PublicKey) String() string {
	payload := k.raw.SerializeCompressed()
	return PublicKeyPrefix + base58.Encode(append(payload, ripemd160Sum(payload)[:4]...))
}

// Equal compara por bytes serializados.
func (k *PublicKey) Equal(o *PublicKey) bool {
	if k == nil || o == nil {
		return k == o
	}
	return bytes.Equal(k.raw.SerializeCompressed(), o.raw.SerializeCompressed())
}

func doubleSHA256(b []byte) []byte {
	h := sha256.Sum256(b)
	h2 := sha256.Sum256(h[:])
	return h2[:]
}

func ripemd160Sum(b []byte) []byte {
	h := ripemd160.New()
	_, _ = h.Write(b)
	return h.Sum(nil)
}
