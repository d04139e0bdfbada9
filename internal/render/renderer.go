package render

import (
	"context"

	"vouch/internal/assets"
	credmodels "vouch/internal/credential/models"
	tmplmodels "vouch/internal/template/models"
)

// Document is a fully rendered credential: the deterministic markup plus the
// painted single-page PDF.
type Document struct {
	Markup string
	PDF    []byte
}

// Renderer combines markup building with the paint engine.
type Renderer struct {
	engine Engine
}

func NewRenderer(engine Engine) *Renderer {
	return &Renderer{engine: engine}
}

// Render produces the final document. Markup building cannot fail; only the
// engine step can, and only for engine/markup layout errors or timeout.
// Missing optional assets never fail a render: the resolver already degraded
// those to omitted elements.
func (r *Renderer) Render(ctx context.Context, c *credmodels.Credential, t *tmplmodels.Template, issuerName string, set assets.ResolvedSet) (*Document, error) {
	markup := BuildMarkup(c, t, issuerName, set)
	pdf, err := r.engine.PDF(ctx, markup)
	if err != nil {
		return nil, err
	}
	return &Document{Markup: markup, PDF: pdf}, nil
}
