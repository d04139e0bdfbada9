package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"vouch/internal/assets"
	"vouch/internal/contentstore"
	"vouch/internal/credential/models"
	credstore "vouch/internal/credential/store"
	issuermodels "vouch/internal/issuer/models"
	issuerstore "vouch/internal/issuer/store"
	"vouch/internal/ledger"
	"vouch/internal/render"
	tmplmodels "vouch/internal/template/models"
	tmplstore "vouch/internal/template/store"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/testutil"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// fakeRenderer stands in for the chromedp engine. The markup side is still
// the real builder; only the paint step is faked.
type fakeRenderer struct {
	err   error
	calls int
}

func (r *fakeRenderer) Render(_ context.Context, c *models.Credential, t *tmplmodels.Template,
	issuerName string, set assets.ResolvedSet) (*render.Document, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	markup := render.BuildMarkup(c, t, issuerName, set)
	return &render.Document{Markup: markup, PDF: []byte("%PDF " + markup)}, nil
}

// fixture wires a service over in-memory collaborators, seeded with one
// approved issuer and one template.
type fixture struct {
	svc         *Service
	credentials *credstore.InMemory
	issuers     *issuerstore.InMemory
	templates   *tmplstore.InMemory
	ledger      *ledger.InMemory
	content     *contentstore.InMemory
	renderer    *fakeRenderer

	issuer   *issuermodels.Issuer
	template *tmplmodels.Template
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		credentials: credstore.NewInMemory(),
		issuers:     issuerstore.NewInMemory(),
		templates:   tmplstore.NewInMemory(),
		ledger:      ledger.NewInMemory(),
		content:     contentstore.NewInMemory(),
		renderer:    &fakeRenderer{},
	}

	issuer, err := issuermodels.New(id.IssuerID(uuid.New()), "Test University", "admin@test.edu", fixedNow)
	require.NoError(t, err)
	issuer.Status = issuermodels.StatusApproved
	issuer.LedgerIdentity = "0xissuer"
	issuer.Assets = id.AssetSet{Logo: "issuer-logo.png", Seal: "issuer-seal.png"}
	require.NoError(t, f.issuers.Create(context.Background(), issuer))
	f.issuer = issuer

	template, err := tmplmodels.New(id.TemplateID(uuid.New()), issuer.ID, "Course Completion",
		[]tmplmodels.Field{{Name: "grade", Type: tmplmodels.FieldText, Required: true}},
		tmplmodels.LayoutDefault, fixedNow)
	require.NoError(t, err)
	template.CustomHTML = `<div>{{subjectName}}: {{grade}}</div>`
	require.NoError(t, f.templates.Create(context.Background(), template))
	f.template = template

	opts = append([]Option{WithContentStore(f.content)}, opts...)
	f.svc = New(f.credentials, f.templates, f.issuers,
		f.ledger, f.renderer, assets.NewResolver(nil), opts...)
	return f
}

func (f *fixture) issueRequest() IssueRequest {
	return IssueRequest{
		IssuerID:       f.issuer.ID,
		TemplateID:     f.template.ID,
		SubjectName:    "Ada Lovelace",
		SubjectContact: "ada@example.org",
		Course:         "Analytical Engines 101",
		Attributes:     []models.Attribute{{Name: "grade", Value: "A"}},
	}
}

func (f *fixture) issue(t *testing.T) *IssueResult {
	t.Helper()
	result, err := f.svc.Issue(testutil.WithFixedTime(context.Background(), fixedNow), f.issueRequest())
	require.NoError(t, err)
	return result
}

// conflictOnce fails the first Create with the duplicate-id sentinel, then
// delegates. Simulates the commit-point collision without guessing random
// ids.
type conflictOnce struct {
	CredentialStore
	fired bool
}

func (s *conflictOnce) Create(ctx context.Context, credential *models.Credential) error {
	if !s.fired {
		s.fired = true
		return sentinel.ErrConflict
	}
	return s.CredentialStore.Create(ctx, credential)
}
