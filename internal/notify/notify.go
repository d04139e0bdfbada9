// Package notify delivers issuance notifications to credential subjects.
// Delivery is best-effort: failures are reported to the caller for logging
// but must never fail an issuance.
package notify

import "context"

// Issuance carries everything the notification needs about a freshly issued
// credential.
type Issuance struct {
	CredentialID    string
	SubjectName     string
	SubjectContact  string
	Course          string
	IssuerName      string
	VerificationURL string
	// Document is the rendered PDF, attached when present.
	Document []byte
}

// Notifier sends a notification for an issued credential.
type Notifier interface {
	CredentialIssued(ctx context.Context, n Issuance) error
}

// NoOp discards every notification. Used when no mail host is configured.
type NoOp struct{}

func (NoOp) CredentialIssued(context.Context, Issuance) error { return nil }
