// Package memory implementa core.Repository en memoria. Pensado para
// desarrollo local y tests; nada persiste entre reinicios.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/ledgerconnect/internal/store/core"
)

type Store struct {
	mu          sync.RWMutex
	clients     map[string]*core.Client
	revocations []core.Revocation
	consumed    map[string]struct{}
	metadata    map[string]json.RawMessage // clientID + "/" + identity
}

func New() *Store {
	return &Store{
		clients:  make(map[string]*core.Client),
		consumed: make(map[string]struct{}),
		metadata: make(map[string]json.RawMessage),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close()                         {}

// AddClient registra una app; sólo para seeding en dev/tests.
func (s *Store) AddClient(c *core.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.clients[c.ID] = &cp
}

func (s *Store) GetClient(ctx context.Context, clientID string) (*core.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) Revoke(ctx context.Context, clientID, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revocations = append(s.revocations, core.Revocation{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Identity:  identity,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, clientID, identity string, issuedAt time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.revocations {
		if r.CreatedAt.Before(issuedAt) {
			continue
		}
		if r.ClientID != "" && r.ClientID != clientID {
			continue
		}
		if r.Identity != "" && r.Identity != identity {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (s *Store) ConsumeCode(ctx context.Context, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.consumed[fingerprint]; done {
		return false, nil
	}
	s.consumed[fingerprint] = struct{}{}
	return true, nil
}

func (s *Store) GetUserMetadata(ctx context.Context, clientID, identity string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.metadata[clientID+"/"+identity]; ok {
		return m, nil
	}
	return json.RawMessage("{}"), nil
}

func (s *Store) SetUserMetadata(ctx context.Context, clientID, identity string, meta json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[clientID+"/"+identity] = meta
	return nil
}
