package keys

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Digest calcula el hash one-way fijo usado en todo el sistema para firmar
// y verificar mensajes (sha256 sobre los bytes exactos del mensaje).
func Digest(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// Sign firma un hash de 32 bytes y devuelve la firma compacta recuperable
// (65 bytes) en hex.
func (k *PrivateKey) Sign(hash []byte) string {
	sig := ecdsa.SignCompact(k.raw, hash, true)
	return hex.EncodeToString(sig)
}

// Verify valida una firma compacta hex contra esta clave pública.
// La clave se recupera desde la firma y se compara por bytes; una firma
// malformada simplemente no verifica.
func (k *PublicKey) Verify(hash []byte, sigHex string) bool {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	recovered, _, err := ecdsa.RecoverCompact(sig, hash)
	if err != nil {
		return false
	}
	return k.Equal(&PublicKey{raw: recovered})
}
