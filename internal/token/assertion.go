// Package token implementa el formato de credencial firmada del servicio:
// un payload JSON canónico, hasheado y firmado con la clave custodial, y
// codificado como un único texto URL-safe. El token es autocontenido: se
// re-verifica sin lookup a base de datos.
package token

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifica la clase de credencial.
type Kind string

const (
	KindChallenge Kind = "challenge"
	KindCode      Kind = "code"
	KindAccess    Kind = "access"
	KindRefresh   Kind = "refresh"
)

var ErrMalformed = errors.New("token: credencial malformada")

// Payload es la parte sin firmar de una credencial. El orden de los campos
// define la serialización canónica: NO reordenar ni agregar campos en el
// medio sin invalidar todos los tokens emitidos.
type Payload struct {
	Kind     Kind     `json:"kind"`
	Identity string   `json:"identity"`
	ClientID string   `json:"client_id,omitempty"`
	Scope    []string `json:"scope,omitempty"`
	IssuedAt int64    `json:"issued_at"`
}

// Assertion es la estructura completa en el wire: payload + firmas.
// signatures[0] firma el hash canónico del payload.
type Assertion struct {
	Payload    Payload  `json:"payload"`
	Signatures []string `json:"signatures"`
}

// Canonical serializa el payload a sus bytes canónicos. Es la ÚNICA función
// usada tanto al firmar como al verificar, para que ambos lados no puedan
// divergir.
func Canonical(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// Hash devuelve el hash canónico del payload.
func Hash(p Payload) ([]byte, error) {
	b, err := Canonical(p)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(b)
	return h[:], nil
}

// Encode serializa una assertion completa al formato de texto URL-safe.
func Encode(a Assertion) (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode parsea un token. Cualquier error de forma se reporta como
// ErrMalformed; la validez de la firma se comprueba aparte.
func Decode(raw string) (*Assertion, error) {
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var a Assertion
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if a.Payload.Kind == "" || a.Payload.Identity == "" || len(a.Signatures) == 0 {
		return nil, ErrMalformed
	}
	return &a, nil
}

// Fingerprint identifica un token para registros de consumo/revocación sin
// persistir el token mismo.
func Fingerprint(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
