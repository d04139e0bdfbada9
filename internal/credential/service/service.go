// Package service orchestrates the credential pipeline: issuance across the
// ledger, renderer, and content store, plus verification, revocation, and
// document download.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"vouch/internal/assets"
	"vouch/internal/contentstore"
	credmetrics "vouch/internal/credential/metrics"
	"vouch/internal/credential/models"
	issuermodels "vouch/internal/issuer/models"
	"vouch/internal/ledger"
	"vouch/internal/notify"
	"vouch/internal/platform/events"
	"vouch/internal/render"
	tmplmodels "vouch/internal/template/models"
	id "vouch/pkg/domain"
)

type CredentialStore interface {
	Create(ctx context.Context, credential *models.Credential) error
	FindByID(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	Execute(ctx context.Context, credentialID id.CredentialID,
		validate func(*models.Credential) error,
		mutate func(*models.Credential)) (*models.Credential, error)
	ListByIssuer(ctx context.Context, issuerID id.IssuerID) ([]*models.Credential, error)
}

type TemplateStore interface {
	FindByID(ctx context.Context, templateID id.TemplateID) (*tmplmodels.Template, error)
}

type IssuerStore interface {
	FindByID(ctx context.Context, issuerID id.IssuerID) (*issuermodels.Issuer, error)
	IncrementIssued(ctx context.Context, issuerID id.IssuerID) error
}

type DocumentRenderer interface {
	Render(ctx context.Context, c *models.Credential, t *tmplmodels.Template,
		issuerName string, set assets.ResolvedSet) (*render.Document, error)
}

type AssetResolver interface {
	ResolveSet(ctx context.Context, template, issuer id.AssetSet) assets.ResolvedSet
}

type ContentStore interface {
	Put(ctx context.Context, data []byte, name string) (contentstore.Address, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// ValidityInvalidator drops cached ledger validity after a local revocation.
type ValidityInvalidator interface {
	Invalidate(ctx context.Context, credentialID id.CredentialID)
}

// Service coordinates the credential pipeline. The ledger, renderer, and
// resolver are required; everything else is optional and degrades to a no-op.
type Service struct {
	credentials CredentialStore
	templates   TemplateStore
	issuers     IssuerStore
	ledger      ledger.Client
	renderer    DocumentRenderer
	resolver    AssetResolver

	store         ContentStore
	notifier      notify.Notifier
	events        EventPublisher
	invalidator   ValidityInvalidator
	metrics       *credmetrics.Metrics
	logger        *slog.Logger
	tracer        trace.Tracer
	publicBaseURL string
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *credmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithContentStore enables best-effort document storage.
func WithContentStore(store ContentStore) Option {
	return func(s *Service) { s.store = store }
}

// WithNotifier enables best-effort subject notification.
func WithNotifier(n notify.Notifier, publicBaseURL string) Option {
	return func(s *Service) {
		s.notifier = n
		s.publicBaseURL = publicBaseURL
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

func WithValidityInvalidator(inv ValidityInvalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

func New(credentials CredentialStore, templates TemplateStore, issuers IssuerStore,
	ledgerClient ledger.Client, renderer DocumentRenderer, resolver AssetResolver,
	opts ...Option) *Service {

	s := &Service{
		credentials: credentials,
		templates:   templates,
		issuers:     issuers,
		ledger:      ledgerClient,
		renderer:    renderer,
		resolver:    resolver,
		notifier:    notify.NoOp{},
		logger:      slog.Default(),
		tracer:      otel.Tracer("vouch/credential"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) incrementIssuanceFailed(step string) {
	if s.metrics != nil {
		s.metrics.IncrementIssuanceFailed(step)
	}
}

func (s *Service) incrementIssuanceDegraded(step string) {
	if s.metrics != nil {
		s.metrics.IncrementIssuanceDegraded(step)
	}
}

func (s *Service) incrementVerification(result, ledgerCheck string) {
	if s.metrics != nil {
		s.metrics.IncrementVerification(result, ledgerCheck)
	}
}
