// Package render turns a credential, its template, and resolved assets into a
// final document: first deterministic HTML markup, then a fixed-page-size PDF
// via a headless browser engine.
package render

import (
	"fmt"
	"html"
	"strings"

	credmodels "vouch/internal/credential/models"
	tmplmodels "vouch/internal/template/models"

	"vouch/internal/assets"
)

// BuildMarkup produces the HTML for a credential. It is pure: the same
// credential, template, and assets always yield byte-identical output, which
// is what makes rendered documents reproducible for verification downloads.
//
// Substitution rules:
//   - every {{fieldName}} declared by the template is replaced with the
//     credential's snapshot value, or "" when the snapshot has no value
//   - replacement is literal, case-sensitive, and single-pass: substituted
//     values are never re-scanned for placeholders
func BuildMarkup(c *credmodels.Credential, t *tmplmodels.Template, issuerName string, set assets.ResolvedSet) string {
	base := t.CustomHTML
	if strings.TrimSpace(base) == "" {
		base = layoutMarkup(t.Layout)
	}

	pairs := []string{
		"{{credentialId}}", html.EscapeString(c.ID.String()),
		"{{subjectName}}", html.EscapeString(c.SubjectName),
		"{{subjectContact}}", html.EscapeString(c.SubjectContact),
		"{{course}}", html.EscapeString(c.Course),
		"{{institution}}", html.EscapeString(issuerName),
		"{{date}}", c.IssuedAt.Format("January 2, 2006"),
		"{{logoImg}}", imageTag(set.Logo, "logo", "Institution Logo"),
		"{{signatureImg}}", imageTag(set.Signature, "signature", "Authorized Signature"),
		"{{sealImg}}", imageTag(set.Seal, "seal", "Official Seal"),
	}
	for _, f := range t.Fields {
		pairs = append(pairs, "{{"+f.Name+"}}", html.EscapeString(c.Attribute(f.Name)))
	}

	// strings.Replacer walks the source once, so a substituted value can
	// never trigger further substitution.
	markup := strings.NewReplacer(pairs...).Replace(base)

	style := layoutStyle(t.Layout)
	if strings.TrimSpace(t.CustomCSS) != "" {
		// Custom rules layer on top of the built-in style for the layout.
		style += "\n" + t.CustomCSS
	}

	return fmt.Sprintf(page, style, markup)
}

// imageTag renders an embedded image or nothing at all. An empty asset must
// produce no markup: a broken image reference on a certificate is worse than
// an omitted seal.
func imageTag(a assets.Asset, class, alt string) string {
	if a.IsEmpty() {
		return ""
	}
	return fmt.Sprintf(`<img src="%s" alt="%s" class="%s">`, a.DataURI(), alt, class)
}

// page is the document shell. Dimensions target a single landscape A4 page
// for both print and email attachment.
const page = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
@page { size: A4 landscape; margin: 0; }
html, body { margin: 0; padding: 0; }
body { width: 1123px; height: 794px; }
%s
</style>
</head>
<body>
%s
</body>
</html>
`
