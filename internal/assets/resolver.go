// Package assets locates and loads issuer visual elements (logo, signature,
// seal) for rendering. Historical data stores references in several shapes:
// inline data URIs, bare filenames, and paths under more than one upload
// root. Resolution is an explicit ordered list of total strategies; the first
// hit wins and every failure degrades to "no asset", never to an error. A
// missing seal must never block rendering.
package assets

import (
	"context"
	"encoding/base64"
	"strings"

	id "vouch/pkg/domain"
)

// Asset is a resolved visual element ready for inline embedding. The zero
// value means "omitted": the renderer drops the element entirely rather than
// emitting a broken reference.
type Asset struct {
	MIME string
	Data []byte
}

func (a Asset) IsEmpty() bool { return len(a.Data) == 0 }

// DataURI returns the inline form the renderer embeds in markup.
func (a Asset) DataURI() string {
	if a.IsEmpty() {
		return ""
	}
	return "data:" + a.MIME + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Strategy is one way of interpreting an asset reference. Implementations
// are total: they report found/not-found and never fail resolution.
type Strategy interface {
	Resolve(ctx context.Context, ref id.AssetRef) (Asset, bool)
}

// Resolver composes strategies over the template-then-issuer fallback order.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds the production resolver: inline data first, then the
// filesystem roots in configuration order.
func NewResolver(roots []string) *Resolver {
	return &Resolver{strategies: []Strategy{
		inlineStrategy{},
		newFileStrategy(roots),
	}}
}

// NewResolverWithStrategies is the seam tests use to inject fakes.
func NewResolverWithStrategies(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve loads one asset slot: the template-level reference wins when
// non-empty, otherwise the issuer-level fallback is tried. An unresolvable
// reference yields the empty Asset.
func (r *Resolver) Resolve(ctx context.Context, templateRef, issuerRef id.AssetRef) Asset {
	for _, ref := range []id.AssetRef{templateRef, issuerRef} {
		if ref.IsEmpty() {
			continue
		}
		for _, s := range r.strategies {
			if asset, ok := s.Resolve(ctx, ref); ok {
				return asset
			}
		}
		// A non-empty ref that no strategy recognizes falls through to the
		// next fallback level rather than failing the render.
	}
	return Asset{}
}

// ResolveSet loads all three slots with the same fallback order.
func (r *Resolver) ResolveSet(ctx context.Context, template, issuer id.AssetSet) ResolvedSet {
	return ResolvedSet{
		Logo:      r.Resolve(ctx, template.Logo, issuer.Logo),
		Signature: r.Resolve(ctx, template.Signature, issuer.Signature),
		Seal:      r.Resolve(ctx, template.Seal, issuer.Seal),
	}
}

// ResolvedSet carries the three loaded assets into the renderer.
type ResolvedSet struct {
	Logo      Asset
	Signature Asset
	Seal      Asset
}

// inlineStrategy handles references that already carry encoded image bytes
// (data:image/png;base64,...). Unknown encodings and undecodable payloads are
// treated as not-found.
type inlineStrategy struct{}

func (inlineStrategy) Resolve(_ context.Context, ref id.AssetRef) (Asset, bool) {
	raw := ref.String()
	if !ref.IsInline() {
		return Asset{}, false
	}
	mime, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return Asset{}, false
	}
	mime, enc, ok := strings.Cut(mime, ";")
	if !ok || enc != "base64" {
		return Asset{}, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return Asset{}, false
	}
	return Asset{MIME: mime, Data: data}, true
}
