// Package ledger anchors credential proofs on an append-only ledger and
// answers validity queries against it. The ledger is a shared-authority log:
// every write is signed by the single operator identity, never by an
// issuer's own key. Issuer addresses are recorded as data only.
package ledger

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	id "vouch/pkg/domain"
)

// AnchorRequest carries the canonical fields written to the ledger. The
// attributes digest stands in for the full attribute snapshot so subject PII
// beyond name/contact never reaches the shared log.
type AnchorRequest struct {
	CredentialID     id.CredentialID
	SubjectName      string
	SubjectContact   string
	AttributesDigest string
	IssuerIdentity   string
}

// AnchorResult is the proof of inclusion. ProofRef is opaque to callers; it
// is stored on the credential record and surfaced for out-of-band audit.
type AnchorResult struct {
	ProofRef string
}

// Client is the pipeline's ledger contract.
//
// Anchor submits a write and waits for inclusion. The anchor state machine is
// two-valued: a call either returns a proof (included) or an error (failed);
// no ambiguous state is exposed. The client does not deduplicate; the
// issuance orchestrator calls it exactly once per credential id.
//
// IsValid is a read-only query over ledger state, independent of the local
// record's status.
//
// Authorize and RevokeAuthorization maintain the on-ledger issuer allowlist;
// they are consumed by the external accreditation workflow, not by the
// issuance pipeline.
type Client interface {
	Anchor(ctx context.Context, req AnchorRequest) (AnchorResult, error)
	IsValid(ctx context.Context, credentialID id.CredentialID) (bool, error)
	Authorize(ctx context.Context, issuerIdentity string) error
	RevokeAuthorization(ctx context.Context, issuerIdentity string) error
}
