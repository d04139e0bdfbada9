package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "vouch/pkg/domain-errors"
)

// Typed UUID wrappers keep issuer and template references from being mixed up
// at compile time. Construct via the Parse functions at trust boundaries;
// direct casting bypasses validation.
type (
	IssuerID   uuid.UUID
	TemplateID uuid.UUID
)

// CredentialID is the human-shareable credential identifier. It is an opaque
// string, not a UUID: the format is CERT-<unix-millis>-<8 hex chars> so it can
// be read over the phone and embedded in verification URLs.
type CredentialID string

// credentialIDPrefix is part of the public identifier contract; existing
// credentials carry it, so it must not change.
const credentialIDPrefix = "CERT-"

func ParseIssuerID(s string) (IssuerID, error) {
	u, err := parseUUID(s, "issuer id")
	if err != nil {
		return IssuerID{}, err
	}
	return IssuerID(u), nil
}

func ParseTemplateID(s string) (TemplateID, error) {
	u, err := parseUUID(s, "template id")
	if err != nil {
		return TemplateID{}, err
	}
	return TemplateID(u), nil
}

// NewCredentialID generates a fresh credential identifier. Uniqueness is
// probabilistic (millisecond timestamp plus 4 random bytes); the record store
// enforces it absolutely and the issuance orchestrator regenerates once on
// conflict.
func NewCredentialID(now time.Time) CredentialID {
	suffix := make([]byte, 4)
	// rand.Read only fails when the platform entropy source is broken; at that
	// point nothing in this process is trustworthy.
	if _, err := rand.Read(suffix); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return CredentialID(fmt.Sprintf("%s%d-%s", credentialIDPrefix, now.UnixMilli(), hex.EncodeToString(suffix)))
}

// ParseCredentialID validates an externally supplied credential identifier.
func ParseCredentialID(s string) (CredentialID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "credential id is required")
	}
	if !strings.HasPrefix(s, credentialIDPrefix) || len(s) < len(credentialIDPrefix)+3 {
		return "", dErrors.New(dErrors.CodeBadRequest, "malformed credential id")
	}
	return CredentialID(s), nil
}

func (id IssuerID) String() string     { return uuid.UUID(id).String() }
func (id TemplateID) String() string   { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return string(id) }

func (id IssuerID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id TemplateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "malformed "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" must not be the nil UUID")
	}
	return u, nil
}
