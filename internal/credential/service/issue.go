package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vouch/internal/credential/models"
	issuermodels "vouch/internal/issuer/models"
	"vouch/internal/ledger"
	"vouch/internal/notify"
	"vouch/internal/platform/events"
	tmplmodels "vouch/internal/template/models"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// IssueRequest carries everything an issuance needs. IssuedAt is optional;
// when nil the request time is used.
type IssueRequest struct {
	IssuerID       id.IssuerID
	TemplateID     id.TemplateID
	SubjectName    string
	SubjectContact string
	Course         string
	Attributes     []models.Attribute
	IssuedAt       *time.Time
}

// IssueResult is the committed credential plus the outcome of the two
// best-effort steps. A successful result always carries a non-empty
// LedgerRef; StoreWarning and NotifyWarning are independently empty.
type IssueResult struct {
	Credential    *models.Credential
	StoreWarning  string
	NotifyWarning string
}

// Issue drives the issuance pipeline: generate an id, anchor it on the
// ledger, render the document, upload it to the content store, and commit
// the credential record.
//
// Anchor and render failures abort the whole issuance and no record is
// written. Storage and notification failures degrade: the credential is
// still committed and the failure is reported as a warning on the result.
// An id collision at the commit point triggers one regeneration of the
// full pipeline; a second collision fails the issuance.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	ctx, span := s.tracer.Start(ctx, "credential.Issue",
		trace.WithAttributes(attribute.String("issuer_id", req.IssuerID.String())))
	defer span.End()

	issuer, template, err := s.loadIssuanceInputs(ctx, req)
	if err != nil {
		return nil, err
	}

	issuedAt := requestcontext.Now(ctx)
	if req.IssuedAt != nil {
		issuedAt = *req.IssuedAt
	}

	result, err := s.attemptIssue(ctx, req, issuer, template, issuedAt)
	if err != nil && dErrors.HasCode(err, dErrors.CodeConflict) {
		// Commit-point id collision. Regenerate once; the new id needs its
		// own anchor and render, so the whole attempt reruns.
		s.logger.WarnContext(ctx, "credential id collision, regenerating",
			"issuer_id", req.IssuerID)
		result, err = s.attemptIssue(ctx, req, issuer, template, issuedAt)
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("credential_id", result.Credential.ID.String()))
	s.finishIssue(ctx, result, issuer)
	return result, nil
}

func (s *Service) loadIssuanceInputs(ctx context.Context, req IssueRequest) (*issuermodels.Issuer, *tmplmodels.Template, error) {
	if req.SubjectName == "" || req.SubjectContact == "" || req.Course == "" {
		return nil, nil, dErrors.New(dErrors.CodeBadRequest, "subject name, subject contact, and course are required")
	}

	issuer, err := s.issuers.FindByID(ctx, req.IssuerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "issuer not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load issuer")
	}
	if !issuer.IsApproved() {
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "issuer is not approved")
	}

	template, err := s.templates.FindByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load template")
	}
	// Templates from another issuer are invisible, not forbidden.
	if template.IssuerID != req.IssuerID {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "template not found")
	}

	for _, name := range template.RequiredFields() {
		if !hasAttribute(req.Attributes, name) {
			return nil, nil, dErrors.New(dErrors.CodeBadRequest,
				fmt.Sprintf("missing required field %q", name))
		}
	}
	return issuer, template, nil
}

// attemptIssue runs one pass of the fatal pipeline steps: anchor, render,
// best-effort store, commit. Best-effort outcomes ride on the result.
func (s *Service) attemptIssue(ctx context.Context, req IssueRequest,
	issuer *issuermodels.Issuer, template *tmplmodels.Template,
	issuedAt time.Time) (*IssueResult, error) {

	credentialID := id.NewCredentialID(issuedAt)

	digest := (&models.Credential{Course: req.Course, Attributes: req.Attributes}).AttributesDigest()

	anchorStart := time.Now()
	anchor, err := s.ledger.Anchor(ctx, ledger.AnchorRequest{
		CredentialID:     credentialID,
		SubjectName:      req.SubjectName,
		SubjectContact:   req.SubjectContact,
		AttributesDigest: digest,
		IssuerIdentity:   issuer.LedgerIdentity,
	})
	if s.metrics != nil {
		s.metrics.ObserveAnchor(anchorStart)
	}
	if err != nil {
		s.incrementIssuanceFailed("anchor")
		return nil, dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "ledger anchor failed")
	}

	credential, err := models.New(credentialID, req.IssuerID, req.TemplateID,
		req.SubjectName, req.SubjectContact, req.Course, req.Attributes,
		anchor.ProofRef, "", issuedAt)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	set := s.resolver.ResolveSet(ctx, template.Assets, issuer.Assets)
	document, err := s.renderer.Render(ctx, credential, template, issuer.Name, set)
	if s.metrics != nil {
		s.metrics.ObserveRender(renderStart)
	}
	if err != nil {
		// The anchor already landed. The ledger proof is inert without a
		// committed record, so no compensation is attempted.
		s.incrementIssuanceFailed("render")
		return nil, dErrors.Wrap(err, dErrors.CodeRenderFailed, "document rendering failed")
	}

	result := &IssueResult{Credential: credential}
	result.StoreWarning = s.storeDocument(ctx, credential, document.PDF)

	if err := s.credentials.Create(ctx, credential); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "credential id already exists")
		}
		s.incrementIssuanceFailed("commit")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit credential")
	}

	result.NotifyWarning = s.notifySubject(ctx, credential, issuer, document.PDF)
	return result, nil
}

// storeDocument uploads the rendered document. Failure never aborts
// issuance; the returned warning is empty on success or skip.
func (s *Service) storeDocument(ctx context.Context, credential *models.Credential, pdf []byte) string {
	if s.store == nil {
		return ""
	}
	start := time.Now()
	addr, err := s.store.Put(ctx, pdf, fmt.Sprintf("certificate-%s.pdf", credential.ID))
	if s.metrics != nil {
		s.metrics.ObserveStore(start)
	}
	if err != nil {
		s.incrementIssuanceDegraded("store")
		s.logger.WarnContext(ctx, "content store upload failed",
			"credential_id", credential.ID, "error", err)
		return "document storage unavailable; certificate remains verifiable and downloadable"
	}
	credential.StoreRef = addr.String()
	return ""
}

func (s *Service) notifySubject(ctx context.Context, credential *models.Credential,
	issuer *issuermodels.Issuer, pdf []byte) string {

	err := s.notifier.CredentialIssued(ctx, notify.Issuance{
		CredentialID:    credential.ID.String(),
		SubjectName:     credential.SubjectName,
		SubjectContact:  credential.SubjectContact,
		Course:          credential.Course,
		IssuerName:      issuer.Name,
		VerificationURL: s.publicBaseURL + "/api/v1/credentials/" + credential.ID.String() + "/verify",
		Document:        pdf,
	})
	if err != nil {
		s.incrementIssuanceDegraded("notify")
		s.logger.WarnContext(ctx, "issuance notification failed",
			"credential_id", credential.ID, "error", err)
		return "notification could not be delivered"
	}
	return ""
}

// finishIssue runs the post-commit bookkeeping. None of it can fail the
// issuance: the credential is already committed.
func (s *Service) finishIssue(ctx context.Context, result *IssueResult, issuer *issuermodels.Issuer) {
	if s.metrics != nil {
		s.metrics.IssuanceSucceeded.Inc()
	}
	if err := s.issuers.IncrementIssued(ctx, issuer.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to increment issuer counter",
			"issuer_id", issuer.ID, "error", err)
	}
	if s.events != nil {
		s.events.Publish(ctx, events.Event{
			Name:         events.CredentialIssued,
			CredentialID: result.Credential.ID,
			IssuerID:     result.Credential.IssuerID,
			OccurredAt:   result.Credential.IssuedAt,
		})
	}
	s.logger.InfoContext(ctx, "credential issued",
		"credential_id", result.Credential.ID,
		"issuer_id", result.Credential.IssuerID,
		"ledger_ref", result.Credential.LedgerRef,
		"store_ref", result.Credential.StoreRef,
	)
}

func hasAttribute(attributes []models.Attribute, name string) bool {
	for _, a := range attributes {
		if a.Name == name && a.Value != "" {
			return true
		}
	}
	return false
}
