// Package handler exposes issuer-scoped template CRUD over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/template/models"
	"vouch/internal/template/service"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, issuerID id.IssuerID, req service.CreateRequest) (*models.Template, error)
	Get(ctx context.Context, issuerID id.IssuerID, templateID id.TemplateID) (*models.Template, error)
	Update(ctx context.Context, issuerID id.IssuerID, templateID id.TemplateID, req service.UpdateRequest) (*models.Template, error)
	Delete(ctx context.Context, issuerID id.IssuerID, templateID id.TemplateID) error
	List(ctx context.Context, issuerID id.IssuerID) ([]*models.Template, error)
}

type Handler struct {
	templates     Service
	logger        *slog.Logger
	requireIssuer func(http.Handler) http.Handler
}

func New(templates Service, requireIssuer func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		templates:     templates,
		logger:        logger,
		requireIssuer: requireIssuer,
	}
}

// Register mounts the template routes. All of them are issuer-authenticated.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/templates", func(r chi.Router) {
		r.Use(h.requireIssuer)
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{templateID}", h.handleGet)
		r.Put("/{templateID}", h.handleUpdate)
		r.Delete("/{templateID}", h.handleDelete)
	})
}

type templatePayload struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Fields      []models.Field `json:"fields"`
	Layout      string         `json:"layout"`
	CustomHTML  string         `json:"custom_html"`
	CustomCSS   string         `json:"custom_css"`
	Assets      id.AssetSet    `json:"assets"`
}

type updatePayload struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Fields      *[]models.Field `json:"fields"`
	Layout      *string         `json:"layout"`
	CustomHTML  *string         `json:"custom_html"`
	CustomCSS   *string         `json:"custom_css"`
	Assets      *id.AssetSet    `json:"assets"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuerID := requestcontext.IssuerID(ctx)

	req, ok := httputil.Decode[templatePayload](w, r, h.logger)
	if !ok {
		return
	}
	layout, err := models.ParseLayout(req.Layout)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	t, err := h.templates.Create(ctx, issuerID, service.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
		Layout:      layout,
		CustomHTML:  req.CustomHTML,
		CustomCSS:   req.CustomCSS,
		Assets:      req.Assets,
	})
	if err != nil {
		h.logError(ctx, "template creation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templateID, err := id.ParseTemplateID(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	t, err := h.templates.Get(ctx, requestcontext.IssuerID(ctx), templateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templateID, err := id.ParseTemplateID(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[updatePayload](w, r, h.logger)
	if !ok {
		return
	}

	svcReq := service.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
		CustomHTML:  req.CustomHTML,
		CustomCSS:   req.CustomCSS,
		Assets:      req.Assets,
	}
	if req.Layout != nil {
		layout, err := models.ParseLayout(*req.Layout)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		svcReq.Layout = &layout
	}

	t, err := h.templates.Update(ctx, requestcontext.IssuerID(ctx), templateID, svcReq)
	if err != nil {
		h.logError(ctx, "template update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templateID, err := id.ParseTemplateID(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.templates.Delete(ctx, requestcontext.IssuerID(ctx), templateID); err != nil {
		h.logError(ctx, "template deletion failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templates, err := h.templates.List(ctx, requestcontext.IssuerID(ctx))
	if err != nil {
		h.logError(ctx, "template listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	log := h.logger.WarnContext
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		log = h.logger.ErrorContext
	}
	log(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"code", dErrors.CodeOf(err),
		"error", err,
	)
}
