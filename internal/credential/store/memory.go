package store

import (
	"context"
	"sort"
	"sync"

	"vouch/internal/credential/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemory keeps credentials in a map. It favors clarity over performance and
// backs unit tests plus single-node development runs.
type InMemory struct {
	mu          sync.RWMutex
	credentials map[id.CredentialID]*models.Credential
}

func NewInMemory() *InMemory {
	return &InMemory{credentials: make(map[id.CredentialID]*models.Credential)}
}

// Create persists a new credential, failing with sentinel.ErrConflict when
// the id already exists. This is the commit point of issuance: uniqueness is
// enforced here, not at id generation.
func (s *InMemory) Create(_ context.Context, credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[credential.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *credential
	s.credentials[credential.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[credentialID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// Execute atomically validates and mutates a credential under the store lock.
// The service layer uses it for the revocation transition so concurrent
// revokes cannot both observe status=issued.
func (s *InMemory) Execute(_ context.Context, credentialID id.CredentialID,
	validate func(*models.Credential) error,
	mutate func(*models.Credential)) (*models.Credential, error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[credentialID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	mutate(c)
	cp := *c
	return &cp, nil
}

// ListByIssuer returns an issuer's credentials, newest first.
func (s *InMemory) ListByIssuer(_ context.Context, issuerID id.IssuerID) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Credential
	for _, c := range s.credentials {
		if c.IssuerID == issuerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out, nil
}
