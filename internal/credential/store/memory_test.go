package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/credential/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

func issuedCredential(t *testing.T, credentialID id.CredentialID, issuerID id.IssuerID, issuedAt time.Time) *models.Credential {
	t.Helper()
	c, err := models.New(credentialID, issuerID, id.TemplateID{},
		"Ada Lovelace", "ada@example.org", "Analytical Engines 101",
		nil, "tx-proof", "", issuedAt)
	require.NoError(t, err)
	return c
}

func TestInMemory_CreateEnforcesIDUniqueness(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	first := issuedCredential(t, "CERT-1-aa", id.IssuerID{}, now)
	require.NoError(t, s.Create(ctx, first))

	dup := issuedCredential(t, "CERT-1-aa", id.IssuerID{}, now)
	err := s.Create(ctx, dup)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestInMemory_FindByIDReturnsCopy(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, issuedCredential(t, "CERT-2-bb", id.IssuerID{}, time.Now())))

	got, err := s.FindByID(ctx, "CERT-2-bb")
	require.NoError(t, err)

	// Mutating the returned value must not leak into the store.
	got.Status = models.StatusRevoked
	again, err := s.FindByID(ctx, "CERT-2-bb")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, again.Status)
}

func TestInMemory_FindByIDUnknownIsNotFound(t *testing.T) {
	s := NewInMemory()

	_, err := s.FindByID(context.Background(), "CERT-404-zz")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemory_ExecuteValidatesUnderLock(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, issuedCredential(t, "CERT-3-cc", id.IssuerID{}, now)))

	updated, err := s.Execute(ctx, "CERT-3-cc",
		func(c *models.Credential) error { return c.CanRevoke() },
		func(c *models.Credential) { c.ApplyRevocation("fraud", now) },
	)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevoked, updated.Status)
	assert.Equal(t, "fraud", updated.RevocationReason)

	// Second transition is rejected by the validator; the record keeps its
	// original revocation data.
	_, err = s.Execute(ctx, "CERT-3-cc",
		func(c *models.Credential) error { return c.CanRevoke() },
		func(c *models.Credential) { c.ApplyRevocation("other", now.Add(time.Hour)) },
	)
	require.Error(t, err)

	persisted, err := s.FindByID(ctx, "CERT-3-cc")
	require.NoError(t, err)
	assert.Equal(t, "fraud", persisted.RevocationReason)
	assert.Equal(t, now, *persisted.RevokedAt)
}

func TestInMemory_ListByIssuerNewestFirst(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	issuerA, err := id.ParseIssuerID("11111111-1111-1111-1111-111111111111")
	require.NoError(t, err)
	issuerB, err := id.ParseIssuerID("22222222-2222-2222-2222-222222222222")
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Create(ctx, issuedCredential(t, "CERT-old", issuerA, base)))
	require.NoError(t, s.Create(ctx, issuedCredential(t, "CERT-new", issuerA, base.Add(time.Hour))))
	require.NoError(t, s.Create(ctx, issuedCredential(t, "CERT-other", issuerB, base)))

	list, err := s.ListByIssuer(ctx, issuerA)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id.CredentialID("CERT-new"), list[0].ID)
	assert.Equal(t, id.CredentialID("CERT-old"), list[1].ID)
}
