// Package handler exposes the credential pipeline over HTTP: authenticated
// issuance, revocation, and listing for issuers, plus public verification
// and download.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vouch/internal/credential/models"
	"vouch/internal/credential/service"
	"vouch/internal/render"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

// Service defines the credential operations the handler needs.
type Service interface {
	Issue(ctx context.Context, req service.IssueRequest) (*service.IssueResult, error)
	Verify(ctx context.Context, credentialID id.CredentialID) (*service.VerificationResult, error)
	Download(ctx context.Context, credentialID id.CredentialID) (*render.Document, error)
	Revoke(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID, reason string) (*models.Credential, error)
	ListByIssuer(ctx context.Context, issuerID id.IssuerID) ([]*models.Credential, error)
}

type Handler struct {
	credentials   Service
	logger        *slog.Logger
	requireIssuer func(http.Handler) http.Handler
}

func New(credentials Service, requireIssuer func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		credentials:   credentials,
		logger:        logger,
		requireIssuer: requireIssuer,
	}
}

// Register mounts the credential routes. Verification and download are
// public by design: anyone holding a credential id may check it.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/credentials", func(r chi.Router) {
		r.Get("/{credentialID}/verify", h.handleVerify)
		r.Get("/{credentialID}/download", h.handleDownload)

		r.Group(func(r chi.Router) {
			r.Use(h.requireIssuer)
			r.Post("/", h.handleIssue)
			r.Get("/", h.handleList)
			r.Post("/{credentialID}/revoke", h.handleRevoke)
		})
	})
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuerID := requestcontext.IssuerID(ctx)

	req, ok := httputil.Decode[issueRequest](w, r, h.logger)
	if !ok {
		return
	}
	svcReq, err := req.toService(issuerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.credentials.Issue(ctx, svcReq)
	if err != nil {
		h.logError(ctx, "issuance failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toIssueResponse(result))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.credentials.Verify(ctx, credentialID)
	if err != nil {
		h.logError(ctx, "verification failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(result))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	document, err := h.credentials.Download(ctx, credentialID)
	if err != nil {
		h.logError(ctx, "download failed", err)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="certificate-%s.pdf"`, credentialID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document.PDF)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuerID := requestcontext.IssuerID(ctx)

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[revokeRequest](w, r, h.logger)
	if !ok {
		return
	}

	credential, err := h.credentials.Revoke(ctx, issuerID, credentialID, req.Reason)
	if err != nil {
		h.logError(ctx, "revocation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(credential))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuerID := requestcontext.IssuerID(ctx)

	credentials, err := h.credentials.ListByIssuer(ctx, issuerID)
	if err != nil {
		h.logError(ctx, "listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(credentials))
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
