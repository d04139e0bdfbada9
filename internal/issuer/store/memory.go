package store

import (
	"context"
	"sync"

	"vouch/internal/issuer/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemory keeps issuers in a map for tests and development runs.
type InMemory struct {
	mu      sync.RWMutex
	issuers map[id.IssuerID]*models.Issuer
}

func NewInMemory() *InMemory {
	return &InMemory{issuers: make(map[id.IssuerID]*models.Issuer)}
}

func (s *InMemory) Create(_ context.Context, issuer *models.Issuer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.issuers[issuer.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *issuer
	s.issuers[issuer.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, issuerID id.IssuerID) (*models.Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issuer, ok := s.issuers[issuerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *issuer
	return &cp, nil
}

// IncrementIssued bumps the issued-credentials counter after a successful
// commit. Best-effort bookkeeping; a miss is not worth failing issuance over.
func (s *InMemory) IncrementIssued(_ context.Context, issuerID id.IssuerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	issuer, ok := s.issuers[issuerID]
	if !ok {
		return sentinel.ErrNotFound
	}
	issuer.CredentialsIssued++
	return nil
}
