package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vouch/internal/credential/models"
	"vouch/internal/platform/events"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// Revoke irreversibly transitions a credential to revoked. Only the owning
// issuer may revoke; a credential owned by someone else is reported as not
// found. Revoking twice is a conflict: RevokedAt and the reason are written
// exactly once and never overwritten.
//
// Uses the store's Execute callback so validation and mutation happen under
// one lock; concurrent revokes cannot both observe status=issued.
func (s *Service) Revoke(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID, reason string) (*models.Credential, error) {
	ctx, span := s.tracer.Start(ctx, "credential.Revoke",
		trace.WithAttributes(attribute.String("credential_id", credentialID.String())))
	defer span.End()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "revocation reason is required")
	}

	now := requestcontext.Now(ctx)
	credential, err := s.credentials.Execute(ctx, credentialID,
		func(c *models.Credential) error {
			if c.IssuerID != issuerID {
				return sentinel.ErrNotFound
			}
			return c.CanRevoke()
		},
		func(c *models.Credential) {
			c.ApplyRevocation(reason, now)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke credential")
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, credentialID)
	}
	if s.metrics != nil {
		s.metrics.Revocations.Inc()
	}
	if s.events != nil {
		s.events.Publish(ctx, events.Event{
			Name:         events.CredentialRevoked,
			CredentialID: credential.ID,
			IssuerID:     credential.IssuerID,
			OccurredAt:   now,
			Reason:       reason,
		})
	}
	s.logger.InfoContext(ctx, "credential revoked",
		"credential_id", credential.ID,
		"issuer_id", credential.IssuerID,
		"reason", reason,
	)
	return credential, nil
}
