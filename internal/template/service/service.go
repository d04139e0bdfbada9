// Package service implements issuer-scoped template management. Templates
// are rendering recipes: credentials reference them at issuance but snapshot
// their data, so edits and deletes here never touch issued credentials.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"vouch/internal/template/models"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

type TemplateStore interface {
	Create(ctx context.Context, t *models.Template) error
	FindByID(ctx context.Context, templateID id.TemplateID) (*models.Template, error)
	Update(ctx context.Context, t *models.Template) error
	Delete(ctx context.Context, templateID id.TemplateID) error
	ListByIssuer(ctx context.Context, issuerID id.IssuerID) ([]*models.Template, error)
}

type Service struct {
	templates TemplateStore
	logger    *slog.Logger
}

func New(templates TemplateStore, logger *slog.Logger) *Service {
	return &Service{templates: templates, logger: logger}
}

// CreateRequest carries the mutable template surface. The zero Layout means
// the default built-in style.
type CreateRequest struct {
	Name        string
	Description string
	Fields      []models.Field
	Layout      models.Layout
	CustomHTML  string
	CustomCSS   string
	Assets      id.AssetSet
}

func (s *Service) Create(ctx context.Context, issuerID id.IssuerID, req CreateRequest) (*models.Template, error) {
	t, err := models.New(id.TemplateID(uuid.New()), issuerID,
		strings.TrimSpace(req.Name), req.Fields, req.Layout, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	t.Description = req.Description
	t.CustomHTML = req.CustomHTML
	t.CustomCSS = req.CustomCSS
	t.Assets = req.Assets

	if err := s.templates.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create template")
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, issuerID id.IssuerID, templateID id.TemplateID) (*models.Template, error) {
	return s.findOwned(ctx, issuerID, templateID)
}

// UpdateRequest applies partial updates; nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string
	Description *string
	Fields      *[]models.Field
	Layout      *models.Layout
	CustomHTML  *string
	CustomCSS   *string
	Assets      *id.AssetSet
}

func (s *Service) Update(ctx context.Context, issuerID id.IssuerID, templateID id.TemplateID, req UpdateRequest) (*models.Template, error) {
	t, err := s.findOwned(ctx, issuerID, templateID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "template name is required")
		}
		t.Name = name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Fields != nil {
		if err := models.ValidateFields(*req.Fields); err != nil {
			return nil, err
		}
		t.Fields = *req.Fields
	}
	if req.Layout != nil {
		if _, err := models.ParseLayout(string(*req.Layout)); err != nil {
			return nil, err
		}
		t.Layout = *req.Layout
	}
	if req.CustomHTML != nil {
		t.CustomHTML = *req.CustomHTML
	}
	if req.CustomCSS != nil {
		t.CustomCSS = *req.CustomCSS
	}
	if req.Assets != nil {
		t.Assets = *req.Assets
	}
	t.UpdatedAt = requestcontext.Now(ctx)

	if err := s.templates.Update(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update template")
	}
	return t, nil
}

// Delete removes a template. Existing credentials keep rendering from their
// snapshots; only new issuance against this template is blocked.
func (s *Service) Delete(ctx context.Context, issuerID id.IssuerID, templateID id.TemplateID) error {
	if _, err := s.findOwned(ctx, issuerID, templateID); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, templateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete template")
	}
	return nil
}

func (s *Service) List(ctx context.Context, issuerID id.IssuerID) ([]*models.Template, error) {
	templates, err := s.templates.ListByIssuer(ctx, issuerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list templates")
	}
	return templates, nil
}

// findOwned hides other issuers' templates behind not-found.
func (s *Service) findOwned(ctx context.Context, issuerID id.IssuerID, templateID id.TemplateID) (*models.Template, error) {
	t, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load template")
	}
	if t.IssuerID != issuerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "template not found")
	}
	return t, nil
}
