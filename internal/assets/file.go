package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	id "vouch/pkg/domain"
)

// fileStrategy loads references that name a file on disk. A reference may be
// an absolute path, a path relative to one of the configured roots, or a bare
// filename that landed in any root over the years. Candidate locations are
// tried in a fixed order and the first readable file wins.
type fileStrategy struct {
	roots []string
}

func newFileStrategy(roots []string) fileStrategy {
	return fileStrategy{roots: roots}
}

func (s fileStrategy) Resolve(_ context.Context, ref id.AssetRef) (Asset, bool) {
	raw := strings.TrimLeft(ref.String(), "/")
	if raw == "" || strings.Contains(raw, "..") {
		return Asset{}, false
	}

	candidates := []string{raw}
	base := filepath.Base(raw)
	for _, root := range s.roots {
		candidates = append(candidates, filepath.Join(root, raw))
		if base != raw {
			candidates = append(candidates, filepath.Join(root, base))
		}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil || len(data) == 0 {
			continue
		}
		return Asset{MIME: mimeForPath(path), Data: data}, true
	}
	return Asset{}, false
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/png"
	}
}
