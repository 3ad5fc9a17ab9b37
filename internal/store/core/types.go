// Package core define los tipos y el contrato de persistencia del servicio.
// Las implementaciones viven en store/pg (producción) y store/memory
// (dev/tests).
package core

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Client es una aplicación registrada. Se crea/administra fuera de este
// servicio; acá se consume read-only.
type Client struct {
	ID            string
	Secret        string
	Owner         string // identidad dueña de la app
	Public        bool
	AllowedIPs    []string
	AuthorizedOps []string // techo de scope y scope default
	CreatedAt     time.Time
}

// Revocation invalida, por presencia, toda credencial que matchee su clave.
// Identity vacío = todas las identidades del cliente; ClientID vacío = la
// identidad en todas las apps. Nunca se borra ni se barre proactivamente:
// se consulta en cada verificación.
type Revocation struct {
	ID        string
	ClientID  string
	Identity  string
	CreatedAt time.Time
}

// Repository es el contrato completo de persistencia.
type Repository interface {
	ClientRepository
	RevocationRepository
	MetadataRepository

	Ping(ctx context.Context) error
	Close()
}

// ClientRepository lee aplicaciones registradas.
type ClientRepository interface {
	GetClient(ctx context.Context, clientID string) (*Client, error)
}

// RevocationRepository persiste revocaciones y consumo de codes.
type RevocationRepository interface {
	// Revoke registra una revocación para (clientID, identity).
	// identity vacío revoca el cliente completo; clientID vacío revoca
	// la identidad en todas las apps. Idempotente.
	Revoke(ctx context.Context, clientID, identity string) error

	// IsRevoked responde si existe una revocación creada después de
	// issuedAt cuyo clientID e identity matcheen los dados, donde el
	// campo vacío en la fila matchea cualquier valor.
	IsRevoked(ctx context.Context, clientID, identity string, issuedAt time.Time) (bool, error)

	// ConsumeCode marca un code como consumido por su fingerprint.
	// Devuelve false si ya estaba consumido. DEBE ser atómico: de N
	// intentos concurrentes sobre el mismo code, exactamente uno gana.
	ConsumeCode(ctx context.Context, fingerprint string) (bool, error)
}

// MetadataRepository guarda el blob user_metadata por (cliente, identidad).
type MetadataRepository interface {
	GetUserMetadata(ctx context.Context, clientID, identity string) (json.RawMessage, error)
	SetUserMetadata(ctx context.Context, clientID, identity string, meta json.RawMessage) error
}
