package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/assets"
	"vouch/internal/contentstore"
	"vouch/internal/credential/models"
	issuermodels "vouch/internal/issuer/models"
	"vouch/internal/notify"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/testutil"
)

func TestIssue_CommitsRecordWithLedgerRef(t *testing.T) {
	f := newFixture(t)

	result := f.issue(t)

	require.NotNil(t, result.Credential)
	assert.NotEmpty(t, result.Credential.LedgerRef)
	assert.Empty(t, result.StoreWarning)
	assert.True(t, f.ledger.Anchored(result.Credential.ID))

	// Discoverable immediately after issuance, already issued.
	persisted, err := f.credentials.FindByID(context.Background(), result.Credential.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, persisted.Status)
	assert.Equal(t, result.Credential.LedgerRef, persisted.LedgerRef)
}

func TestIssue_StoresRenderedDocumentUnderContentAddress(t *testing.T) {
	f := newFixture(t)

	result := f.issue(t)

	require.NotEmpty(t, result.Credential.StoreRef)
	addr, err := contentstore.Normalize(result.Credential.StoreRef)
	require.NoError(t, err)
	stored, ok := f.content.Get(addr)
	require.True(t, ok)
	assert.Contains(t, string(stored), "Ada Lovelace: A")
}

func TestIssue_IncrementsIssuerCounter(t *testing.T) {
	f := newFixture(t)

	f.issue(t)
	f.issue(t)

	issuer, err := f.issuers.FindByID(context.Background(), f.issuer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, issuer.CredentialsIssued)
}

func TestIssue_AnchorTimeoutAbortsWithoutRecord(t *testing.T) {
	f := newFixture(t)
	f.ledger.AnchorErr = fmt.Errorf("waiting for ledger signer: %w", sentinel.ErrTimeout)

	_, err := f.svc.Issue(context.Background(), f.issueRequest())

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	// No credential record exists for the failed issuance.
	list, listErr := f.credentials.ListByIssuer(context.Background(), f.issuer.ID)
	require.NoError(t, listErr)
	assert.Empty(t, list)
}

func TestIssue_RenderFailureAbortsAfterAnchor(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = errors.New("chrome crashed")

	_, err := f.svc.Issue(context.Background(), f.issueRequest())

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRenderFailed))
	list, listErr := f.credentials.ListByIssuer(context.Background(), f.issuer.ID)
	require.NoError(t, listErr)
	assert.Empty(t, list, "render failure must not commit a record even though the anchor landed")
}

func TestIssue_StorageFailureDegradesToWarning(t *testing.T) {
	f := newFixture(t)
	f.content.PutErr = errors.New("ipfs node unreachable")

	result := f.issue(t)

	assert.NotEmpty(t, result.StoreWarning)
	assert.Empty(t, result.Credential.StoreRef)

	persisted, err := f.credentials.FindByID(context.Background(), result.Credential.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, persisted.Status)
	assert.Empty(t, persisted.StoreRef)
}

func TestIssue_NotificationFailureDegradesToWarning(t *testing.T) {
	f := newFixture(t)
	f.svc.notifier = failingNotifier{}

	result := f.issue(t)

	assert.NotEmpty(t, result.NotifyWarning)
	persisted, err := f.credentials.FindByID(context.Background(), result.Credential.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, persisted.Status)
}

func TestIssue_IDCollisionRegeneratesOnce(t *testing.T) {
	f := newFixture(t)
	wrapped := &conflictOnce{CredentialStore: f.credentials}
	f.svc = New(wrapped, f.templates, f.issuers, f.ledger, f.renderer,
		assets.NewResolver(nil), WithContentStore(f.content))

	result := f.issue(t)

	assert.True(t, wrapped.fired)
	assert.Equal(t, 2, f.renderer.calls, "the regenerated id needs its own render")
	list, err := f.credentials.ListByIssuer(context.Background(), f.issuer.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, result.Credential.ID, list[0].ID)
}

func TestIssue_MissingRequiredFieldIsRejected(t *testing.T) {
	f := newFixture(t)
	req := f.issueRequest()
	req.Attributes = nil

	_, err := f.svc.Issue(context.Background(), req)

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.False(t, f.renderer.calls > 0, "validation happens before any external call")
}

func TestIssue_UnapprovedIssuerIsRejected(t *testing.T) {
	f := newFixture(t)
	pending, err := issuermodels.New(id.IssuerID(uuid.New()), "Pending College", "dean@pending.edu", fixedNow)
	require.NoError(t, err)
	require.NoError(t, f.issuers.Create(context.Background(), pending))

	req := f.issueRequest()
	req.IssuerID = pending.ID

	_, err = f.svc.Issue(context.Background(), req)

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestIssue_ForeignTemplateLooksLikeNotFound(t *testing.T) {
	f := newFixture(t)
	other := newFixture(t)

	req := f.issueRequest()
	req.TemplateID = other.template.ID
	// The other fixture's template lives in a different store entirely, so
	// seed it into this one to prove ownership is what hides it.
	require.NoError(t, f.templates.Create(context.Background(), other.template))

	_, err := f.svc.Issue(context.Background(), req)

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestIssue_ExplicitIssuedAtIsHonored(t *testing.T) {
	f := newFixture(t)
	explicit := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	req := f.issueRequest()
	req.IssuedAt = &explicit

	result, err := f.svc.Issue(testutil.WithFixedTime(context.Background(), fixedNow), req)
	require.NoError(t, err)

	assert.Equal(t, explicit, result.Credential.IssuedAt)
}

// failingNotifier always fails delivery.
type failingNotifier struct{}

func (failingNotifier) CredentialIssued(context.Context, notify.Issuance) error {
	return errors.New("smtp unreachable")
}
