// Package pg implementa core.Repository sobre PostgreSQL con pgxpool.
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/ledgerconnect/internal/store/core"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open crea el pool y verifica conectividad.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: dsn inválido: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: no se pudo crear el pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping falló: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }
func (s *Store) Close()                         { s.pool.Close() }

// ── Clients ──────────────────────────────────────────────────────────────

func (s *Store) GetClient(ctx context.Context, clientID string) (*core.Client, error) {
	const q = `
		SELECT id, secret, owner, public, allowed_ips, authorized_ops, created_at
		FROM clients WHERE id = $1`

	var c core.Client
	err := s.pool.QueryRow(ctx, q, clientID).Scan(
		&c.ID, &c.Secret, &c.Owner, &c.Public, &c.AllowedIPs, &c.AuthorizedOps, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get client: %w", err)
	}
	return &c, nil
}

// ── Revocations ──────────────────────────────────────────────────────────

func (s *Store) Revoke(ctx context.Context, clientID, identity string) error {
	const q = `
		INSERT INTO revocations (id, client_id, identity, created_at)
		VALUES ($1, $2, $3, now())`

	_, err := s.pool.Exec(ctx, q, uuid.NewString(), clientID, identity)
	if err != nil {
		return fmt.Errorf("pg: revoke: %w", err)
	}
	return nil
}

// IsRevoked matchea revocaciones de cliente completo (identity vacía en la
// fila), de identidad completa (client_id vacío) y del par puntual, siempre
// posteriores a la emisión de la credencial: revocar hoy no invalida lo que
// se emita mañana.
func (s *Store) IsRevoked(ctx context.Context, clientID, identity string, issuedAt time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM revocations
			WHERE (client_id = '' OR client_id = $1)
			  AND (identity = '' OR identity = $2)
			  AND created_at >= $3
		)`

	var revoked bool
	if err := s.pool.QueryRow(ctx, q, clientID, identity, issuedAt).Scan(&revoked); err != nil {
		return false, fmt.Errorf("pg: is revoked: %w", err)
	}
	return revoked, nil
}

// ConsumeCode gana si inserta; ON CONFLICT DO NOTHING hace la carrera
// atómica sin transacción explícita.
func (s *Store) ConsumeCode(ctx context.Context, fingerprint string) (bool, error) {
	const q = `
		INSERT INTO consumed_codes (fingerprint, consumed_at)
		VALUES ($1, now())
		ON CONFLICT (fingerprint) DO NOTHING`

	tag, err := s.pool.Exec(ctx, q, fingerprint)
	if err != nil {
		return false, fmt.Errorf("pg: consume code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ── User metadata ────────────────────────────────────────────────────────

func (s *Store) GetUserMetadata(ctx context.Context, clientID, identity string) (json.RawMessage, error) {
	const q = `
		SELECT metadata FROM user_metadata
		WHERE client_id = $1 AND identity = $2`

	var meta []byte
	err := s.pool.QueryRow(ctx, q, clientID, identity).Scan(&meta)
	if errors.Is(err, pgx.ErrNoRows) {
		return json.RawMessage("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get metadata: %w", err)
	}
	return meta, nil
}

func (s *Store) SetUserMetadata(ctx context.Context, clientID, identity string, meta json.RawMessage) error {
	const q = `
		INSERT INTO user_metadata (client_id, identity, metadata, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (client_id, identity)
		DO UPDATE SET metadata = EXCLUDED.metadata, updated_at = now()`

	_, err := s.pool.Exec(ctx, q, clientID, identity, meta)
	if err != nil {
		return fmt.Errorf("pg: set metadata: %w", err)
	}
	return nil
}
