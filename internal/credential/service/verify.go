package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vouch/internal/credential/models"
	tmplmodels "vouch/internal/template/models"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
)

// Outcome is the public verification verdict.
type Outcome string

const (
	OutcomeValid   Outcome = "valid"
	OutcomeRevoked Outcome = "revoked"
)

// View is the composed public display of a valid credential. It carries
// display data and asset references only, never ledger signing material or
// record internals.
type View struct {
	CredentialID   id.CredentialID    `json:"credential_id"`
	SubjectName    string             `json:"subject_name"`
	SubjectContact string             `json:"subject_contact"`
	Course         string             `json:"course"`
	Attributes     []models.Attribute `json:"attributes"`
	IssuerName     string             `json:"issuer_name"`
	IssuedAt       time.Time          `json:"issued_at"`
	Assets         id.AssetSet        `json:"assets"`
}

// VerificationResult is the outcome of a verification. LedgerChecked is
// false when the ledger was unavailable or deliberately not consulted; the
// verdict then rests on the local record alone.
type VerificationResult struct {
	Outcome          Outcome
	LedgerChecked    bool
	RevocationReason string
	RevokedAt        *time.Time
	View             *View
}

// Verify answers whether a credential is authentic and currently valid.
//
// A locally revoked credential is terminal: the ledger is not consulted and
// cannot resurrect it. For issued credentials the ledger is a secondary
// corroboration: an explicit on-ledger invalid verdict revokes the result,
// but a failed ledger call degrades to the local record's answer.
func (s *Service) Verify(ctx context.Context, credentialID id.CredentialID) (*VerificationResult, error) {
	ctx, span := s.tracer.Start(ctx, "credential.Verify",
		trace.WithAttributes(attribute.String("credential_id", credentialID.String())))
	defer span.End()

	credential, err := s.credentials.FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementVerification("not_found", "skipped")
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}

	if credential.IsRevoked() {
		s.incrementVerification("revoked", "skipped")
		return &VerificationResult{
			Outcome:          OutcomeRevoked,
			RevocationReason: credential.RevocationReason,
			RevokedAt:        credential.RevokedAt,
		}, nil
	}

	ledgerChecked := true
	valid, err := s.ledger.IsValid(ctx, credentialID)
	if err != nil {
		ledgerChecked = false
		valid = true
		s.logger.WarnContext(ctx, "ledger validity check unavailable",
			"credential_id", credentialID, "error", err)
	}
	if !valid {
		s.incrementVerification("revoked", "invalid")
		return &VerificationResult{
			Outcome:       OutcomeRevoked,
			LedgerChecked: true,
		}, nil
	}

	view, err := s.composeView(ctx, credential)
	if err != nil {
		return nil, err
	}

	check := "ok"
	if !ledgerChecked {
		check = "unavailable"
	}
	s.incrementVerification("valid", check)
	return &VerificationResult{
		Outcome:       OutcomeValid,
		LedgerChecked: ledgerChecked,
		View:          view,
	}, nil
}

// composeView assembles the public display data. Template-level asset
// references win over the issuer's fallbacks, mirroring the render path. A
// since-deleted template degrades to issuer assets only.
func (s *Service) composeView(ctx context.Context, credential *models.Credential) (*View, error) {
	issuer, err := s.issuers.FindByID(ctx, credential.IssuerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load issuer")
	}

	templateAssets := id.AssetSet{}
	if template, err := s.loadTemplate(ctx, credential.TemplateID); err == nil {
		templateAssets = template.Assets
	}

	return &View{
		CredentialID:   credential.ID,
		SubjectName:    credential.SubjectName,
		SubjectContact: credential.SubjectContact,
		Course:         credential.Course,
		Attributes:     credential.Attributes,
		IssuerName:     issuer.Name,
		IssuedAt:       credential.IssuedAt,
		Assets: id.AssetSet{
			Logo:      preferRef(templateAssets.Logo, issuer.Assets.Logo),
			Signature: preferRef(templateAssets.Signature, issuer.Assets.Signature),
			Seal:      preferRef(templateAssets.Seal, issuer.Assets.Seal),
		},
	}, nil
}

// ListByIssuer returns an issuer's credentials, newest first.
func (s *Service) ListByIssuer(ctx context.Context, issuerID id.IssuerID) ([]*models.Credential, error) {
	credentials, err := s.credentials.ListByIssuer(ctx, issuerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return credentials, nil
}

func (s *Service) loadTemplate(ctx context.Context, templateID id.TemplateID) (*tmplmodels.Template, error) {
	template, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load template")
	}
	return template, nil
}

func preferRef(templateRef, issuerRef id.AssetRef) id.AssetRef {
	if !templateRef.IsEmpty() {
		return templateRef
	}
	return issuerRef
}
