package handler

import (
	"time"

	"vouch/internal/credential/models"
	"vouch/internal/credential/service"
)

type credentialResponse struct {
	ID               string             `json:"id"`
	TemplateID       string             `json:"template_id"`
	SubjectName      string             `json:"subject_name"`
	SubjectContact   string             `json:"subject_contact"`
	Course           string             `json:"course"`
	Attributes       []models.Attribute `json:"attributes"`
	Status           string             `json:"status"`
	IssuedAt         time.Time          `json:"issued_at"`
	LedgerRef        string             `json:"ledger_ref"`
	StoreRef         string             `json:"store_ref,omitempty"`
	RevocationReason string             `json:"revocation_reason,omitempty"`
	RevokedAt        *time.Time         `json:"revoked_at,omitempty"`
}

func toCredentialResponse(c *models.Credential) credentialResponse {
	return credentialResponse{
		ID:               c.ID.String(),
		TemplateID:       c.TemplateID.String(),
		SubjectName:      c.SubjectName,
		SubjectContact:   c.SubjectContact,
		Course:           c.Course,
		Attributes:       c.Attributes,
		Status:           string(c.Status),
		IssuedAt:         c.IssuedAt,
		LedgerRef:        c.LedgerRef,
		StoreRef:         c.StoreRef,
		RevocationReason: c.RevocationReason,
		RevokedAt:        c.RevokedAt,
	}
}

// issueResponse reports the committed credential plus any best-effort step
// that degraded. Warnings are informational; their presence never changes
// the 201 status.
type issueResponse struct {
	Credential credentialResponse `json:"credential"`
	Warnings   []string           `json:"warnings,omitempty"`
}

func toIssueResponse(result *service.IssueResult) issueResponse {
	resp := issueResponse{Credential: toCredentialResponse(result.Credential)}
	for _, w := range []string{result.StoreWarning, result.NotifyWarning} {
		if w != "" {
			resp.Warnings = append(resp.Warnings, w)
		}
	}
	return resp
}

type verifyResponse struct {
	Status           string        `json:"status"`
	LedgerChecked    bool          `json:"ledger_checked"`
	RevocationReason string        `json:"revocation_reason,omitempty"`
	RevokedAt        *time.Time    `json:"revoked_at,omitempty"`
	Credential       *service.View `json:"credential,omitempty"`
}

func toVerifyResponse(result *service.VerificationResult) verifyResponse {
	return verifyResponse{
		Status:           string(result.Outcome),
		LedgerChecked:    result.LedgerChecked,
		RevocationReason: result.RevocationReason,
		RevokedAt:        result.RevokedAt,
		Credential:       result.View,
	}
}

type listResponse struct {
	Credentials []credentialResponse `json:"credentials"`
}

func toListResponse(credentials []*models.Credential) listResponse {
	out := listResponse{Credentials: make([]credentialResponse, 0, len(credentials))}
	for _, c := range credentials {
		out.Credentials = append(out.Credentials, toCredentialResponse(c))
	}
	return out
}
