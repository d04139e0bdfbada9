package domain

import "strings"

// AssetRef points at an issuer visual element (logo, signature, seal). The
// historical data is messy: a ref may be empty, an inline data URI, a bare
// filename, or a path under one of several upload roots. The asset resolver
// owns the interpretation; this type only answers cheap shape questions.
type AssetRef string

func (r AssetRef) IsEmpty() bool { return strings.TrimSpace(string(r)) == "" }

// IsInline reports whether the ref already carries encoded image bytes.
func (r AssetRef) IsInline() bool { return strings.HasPrefix(string(r), "data:image") }

func (r AssetRef) String() string { return string(r) }

// AssetSet groups the three visual elements a rendered credential can embed.
type AssetSet struct {
	Logo      AssetRef `json:"logo"`
	Signature AssetRef `json:"signature"`
	Seal      AssetRef `json:"seal"`
}
