package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Status is the credential lifecycle state. Issued is initial; the only
// transition is issued -> revoked, exactly once.
type Status string

const (
	StatusIssued  Status = "issued"
	StatusRevoked Status = "revoked"
)

// Attribute is one named custom value. Attributes are a slice, not a map:
// templates declare field order and the rendered document must follow it.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Credential is the authoritative record of an issued certificate.
//
// Invariants:
//   - ID, subject data, attributes, template and issuer refs, IssuedAt, and
//     LedgerRef are immutable once issued
//   - Attributes are a snapshot copied at issuance; later template or issuer
//     edits never change what a verified credential displays
//   - StoreRef may be empty: content-store upload is best-effort
//   - Revocation is irreversible and records reason and time exactly once
type Credential struct {
	ID             id.CredentialID `json:"id"`
	IssuerID       id.IssuerID     `json:"issuer_id"`
	TemplateID     id.TemplateID   `json:"template_id"`
	SubjectName    string          `json:"subject_name"`
	SubjectContact string          `json:"subject_contact"`
	Course         string          `json:"course"`
	Attributes     []Attribute     `json:"attributes"`
	Status         Status          `json:"status"`
	IssuedAt       time.Time       `json:"issued_at"`
	LedgerRef      string          `json:"ledger_ref"`
	StoreRef       string          `json:"store_ref,omitempty"`
	RevocationReason string        `json:"revocation_reason,omitempty"`
	RevokedAt        *time.Time    `json:"revoked_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (c *Credential) IsRevoked() bool { return c.Status == StatusRevoked }

// Attribute returns the value for a named attribute, or "" when absent.
func (c *Credential) Attribute(name string) string {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// AttributesDigest is the canonical hash of course plus custom attributes
// anchored on the ledger. Order-sensitive: the slice order is part of the
// snapshot.
func (c *Credential) AttributesDigest() string {
	h := sha256.New()
	h.Write([]byte(c.Course))
	for _, a := range c.Attributes {
		h.Write([]byte{0})
		h.Write([]byte(a.Name))
		h.Write([]byte{1})
		h.Write([]byte(a.Value))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CanRevoke checks the transition. Revoking an already revoked credential is
// a conflict; RevokedAt and the reason are written exactly once.
func (c *Credential) CanRevoke() error {
	if c.Status == StatusRevoked {
		return dErrors.New(dErrors.CodeConflict, "credential is already revoked")
	}
	return nil
}

// ApplyRevocation transitions the credential to revoked. Call CanRevoke
// first; this method assumes the transition is legal.
func (c *Credential) ApplyRevocation(reason string, now time.Time) {
	c.Status = StatusRevoked
	c.RevocationReason = reason
	c.RevokedAt = &now
	c.UpdatedAt = now
}

// New validates and constructs an issued credential. LedgerRef is required:
// a credential without an anchor proof must never be committed.
func New(credentialID id.CredentialID, issuerID id.IssuerID, templateID id.TemplateID,
	subjectName, subjectContact, course string, attributes []Attribute,
	ledgerRef, storeRef string, issuedAt time.Time) (*Credential, error) {

	if credentialID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "credential id cannot be empty")
	}
	if subjectName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject name is required")
	}
	if subjectContact == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject contact is required")
	}
	if course == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "course is required")
	}
	if ledgerRef == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "credential requires a ledger anchor reference")
	}

	// Defensive copy: the caller's slice must not alias the snapshot.
	attrs := make([]Attribute, len(attributes))
	copy(attrs, attributes)

	return &Credential{
		ID:             credentialID,
		IssuerID:       issuerID,
		TemplateID:     templateID,
		SubjectName:    subjectName,
		SubjectContact: subjectContact,
		Course:         course,
		Attributes:     attrs,
		Status:         StatusIssued,
		IssuedAt:       issuedAt,
		LedgerRef:      ledgerRef,
		StoreRef:       storeRef,
		CreatedAt:      issuedAt,
		UpdatedAt:      issuedAt,
	}, nil
}
