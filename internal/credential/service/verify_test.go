package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vouch/internal/ledger/mocks"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

func TestVerify_UnknownIDIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Verify(context.Background(), "CERT-0-never")

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestVerify_ValidCredentialComposesView(t *testing.T) {
	f := newFixture(t)
	result := f.issue(t)

	verification, err := f.svc.Verify(context.Background(), result.Credential.ID)
	require.NoError(t, err)

	assert.Equal(t, OutcomeValid, verification.Outcome)
	assert.True(t, verification.LedgerChecked)
	require.NotNil(t, verification.View)
	assert.Equal(t, "Ada Lovelace", verification.View.SubjectName)
	assert.Equal(t, "Test University", verification.View.IssuerName)
	assert.Equal(t, "A", verification.View.Attributes[0].Value)
}

func TestVerify_LocallyRevokedIsTerminal(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)
	_, err := f.svc.Revoke(context.Background(), f.issuer.ID, issued.Credential.ID, "fraud")
	require.NoError(t, err)

	// Swap in a strict mock with no IsValid expectation: consulting the
	// ledger for a locally revoked credential would fail this test.
	ctrl := gomock.NewController(t)
	f.svc.ledger = mocks.NewMockClient(ctrl)

	verification, err := f.svc.Verify(context.Background(), issued.Credential.ID)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRevoked, verification.Outcome)
	assert.Equal(t, "fraud", verification.RevocationReason)
	require.NotNil(t, verification.RevokedAt)
	assert.Nil(t, verification.View)
}

func TestVerify_LedgerErrorDegradesToLocalRecord(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockClient(ctrl)
	mock.EXPECT().IsValid(gomock.Any(), issued.Credential.ID).
		Return(false, errors.New("gateway timeout"))
	f.svc.ledger = mock

	verification, err := f.svc.Verify(context.Background(), issued.Credential.ID)
	require.NoError(t, err, "an unreachable ledger must not fail verification")

	assert.Equal(t, OutcomeValid, verification.Outcome)
	assert.False(t, verification.LedgerChecked)
	require.NotNil(t, verification.View)
}

func TestVerify_LedgerInvalidOverridesLocalIssued(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)
	f.ledger.MarkInvalid(issued.Credential.ID)

	verification, err := f.svc.Verify(context.Background(), issued.Credential.ID)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRevoked, verification.Outcome)
	assert.True(t, verification.LedgerChecked)
}

func TestVerify_TemplateAssetsPreferredInView(t *testing.T) {
	f := newFixture(t)
	f.template.Assets = id.AssetSet{Logo: "template-logo.png"}
	require.NoError(t, f.templates.Update(context.Background(), f.template))
	issued := f.issue(t)

	verification, err := f.svc.Verify(context.Background(), issued.Credential.ID)
	require.NoError(t, err)

	assert.Equal(t, id.AssetRef("template-logo.png"), verification.View.Assets.Logo)
	assert.Equal(t, id.AssetRef("issuer-seal.png"), verification.View.Assets.Seal,
		"empty template slots fall back to issuer assets")
}

func TestVerify_DeletedTemplateFallsBackToIssuerAssets(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)
	require.NoError(t, f.templates.Delete(context.Background(), f.template.ID))

	verification, err := f.svc.Verify(context.Background(), issued.Credential.ID)
	require.NoError(t, err)

	assert.Equal(t, OutcomeValid, verification.Outcome)
	assert.Equal(t, f.issuer.Assets, verification.View.Assets)
}

func TestDownload_RendersForRevokedCredentialToo(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)
	_, err := f.svc.Revoke(context.Background(), f.issuer.ID, issued.Credential.ID, "fraud")
	require.NoError(t, err)

	document, err := f.svc.Download(context.Background(), issued.Credential.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, document.PDF)
}

func TestDownload_SurvivesTemplateDeletion(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)
	require.NoError(t, f.templates.Delete(context.Background(), f.template.ID))

	document, err := f.svc.Download(context.Background(), issued.Credential.ID)
	require.NoError(t, err)
	assert.Contains(t, document.Markup, "Ada Lovelace")
}

func TestDownload_EngineFailureIsRenderFailed(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t)
	f.renderer.err = errors.New("no chrome executable")

	_, err := f.svc.Download(context.Background(), issued.Credential.ID)

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRenderFailed))
}

func TestDownload_UnknownIDIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Download(context.Background(), "CERT-0-never")

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
