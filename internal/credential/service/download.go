package service

import (
	"context"
	"errors"

	"vouch/internal/render"
	tmplmodels "vouch/internal/template/models"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
)

// Download re-renders the credential's document for the caller. It works
// independently of the verification verdict: a revoked credential still
// downloads, the verdict lives on the verify endpoint. Render engine failure
// surfaces as CodeRenderFailed without touching the record.
func (s *Service) Download(ctx context.Context, credentialID id.CredentialID) (*render.Document, error) {
	ctx, span := s.tracer.Start(ctx, "credential.Download")
	defer span.End()

	credential, err := s.credentials.FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}

	issuer, err := s.issuers.FindByID(ctx, credential.IssuerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load issuer")
	}

	// Deleting a template never invalidates credentials already rendered
	// from it: fall back to the default layout with the credential's own
	// attribute snapshot.
	template, err := s.loadTemplate(ctx, credential.TemplateID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		template = &tmplmodels.Template{
			ID:       credential.TemplateID,
			IssuerID: credential.IssuerID,
			Layout:   tmplmodels.LayoutDefault,
		}
	}

	set := s.resolver.ResolveSet(ctx, template.Assets, issuer.Assets)
	document, err := s.renderer.Render(ctx, credential, template, issuer.Name, set)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRenderFailed, "document rendering unavailable")
	}
	return document, nil
}
