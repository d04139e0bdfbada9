package contentstore

import (
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
)

// Address is a canonical content identifier: a bare CID string with no
// scheme or gateway prefix.
type Address string

func (a Address) String() string { return string(a) }

// Normalize extracts the canonical Address from any of the reference forms
// seen in stored records and client input: a bare CID, an ipfs:// URI, or a
// gateway URL containing an /ipfs/<cid> path segment. Trailing path
// segments after the CID are dropped. Normalizing an already-canonical
// Address is the identity.
func Normalize(ref string) (Address, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty content reference")
	}

	candidate := ref
	switch {
	case strings.HasPrefix(ref, "ipfs://"):
		candidate = strings.TrimPrefix(ref, "ipfs://")
	case strings.Contains(ref, "/ipfs/"):
		_, after, _ := strings.Cut(ref, "/ipfs/")
		candidate = after
	}
	candidate, _, _ = strings.Cut(candidate, "/")
	candidate, _, _ = strings.Cut(candidate, "?")

	parsed, err := cid.Decode(candidate)
	if err != nil {
		return "", fmt.Errorf("parse content reference %q: %w", ref, err)
	}
	return Address(parsed.String()), nil
}

// GatewayURL builds a public retrieval URL for an address against the given
// gateway base.
func GatewayURL(gateway string, addr Address) string {
	return strings.TrimRight(gateway, "/") + "/ipfs/" + string(addr)
}
