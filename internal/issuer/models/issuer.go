package models

import (
	"time"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Status tracks accreditation. The approval workflow itself lives in an
// external system; this service only reads the outcome.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRevoked  Status = "revoked"
)

// Issuer owns templates and credentials. Its asset set is the fallback when a
// template leaves an asset slot empty.
//
// Invariants:
//   - Name and Email are non-empty
//   - LedgerIdentity is recorded for audit but is never the signer for
//     anchoring calls; all writes go through the shared operator identity
type Issuer struct {
	ID          id.IssuerID `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
	// LedgerIdentity is the issuer's own on-ledger address, used by the
	// external accreditation workflow for authorize/revoke calls.
	LedgerIdentity     string       `json:"ledger_identity,omitempty"`
	Assets             id.AssetSet  `json:"assets"`
	CredentialsIssued  int          `json:"credentials_issued"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (i *Issuer) IsApproved() bool { return i.Status == StatusApproved }

func New(issuerID id.IssuerID, name, email string, now time.Time) (*Issuer, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issuer name cannot be empty")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issuer email cannot be empty")
	}
	return &Issuer{
		ID:        issuerID,
		Name:      name,
		Email:     email,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
