package ledger

import (
	"context"
	"fmt"
	"sync"

	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemory is a process-local ledger for tests and development runs. It
// honors the Client contract (including on-ledger revocation state) without
// any network dependency, and exposes failure injection so orchestrator
// tests can exercise the fatal-vs-degrade policy.
type InMemory struct {
	mu       sync.Mutex
	anchored map[id.CredentialID]AnchorRequest
	invalid  map[id.CredentialID]bool
	issuers  map[string]bool
	seq      int

	// AnchorErr and ValidityErr, when set, fail the corresponding calls.
	AnchorErr   error
	ValidityErr error
}

func NewInMemory() *InMemory {
	return &InMemory{
		anchored: make(map[id.CredentialID]AnchorRequest),
		invalid:  make(map[id.CredentialID]bool),
		issuers:  make(map[string]bool),
	}
}

func (l *InMemory) Anchor(_ context.Context, req AnchorRequest) (AnchorResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.AnchorErr != nil {
		return AnchorResult{}, l.AnchorErr
	}
	l.seq++
	l.anchored[req.CredentialID] = req
	return AnchorResult{ProofRef: fmt.Sprintf("memtx-%06d", l.seq)}, nil
}

func (l *InMemory) IsValid(_ context.Context, credentialID id.CredentialID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ValidityErr != nil {
		return false, l.ValidityErr
	}
	if _, ok := l.anchored[credentialID]; !ok {
		return false, nil
	}
	return !l.invalid[credentialID], nil
}

func (l *InMemory) Authorize(_ context.Context, issuerIdentity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issuers[issuerIdentity] = true
	return nil
}

func (l *InMemory) RevokeAuthorization(_ context.Context, issuerIdentity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.issuers[issuerIdentity] {
		return sentinel.ErrNotFound
	}
	l.issuers[issuerIdentity] = false
	return nil
}

// MarkInvalid flips on-ledger validity for a credential, simulating
// ledger-side revocation.
func (l *InMemory) MarkInvalid(credentialID id.CredentialID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalid[credentialID] = true
}

// Anchored reports whether a credential was anchored, for test assertions.
func (l *InMemory) Anchored(credentialID id.CredentialID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.anchored[credentialID]
	return ok
}
