package models

import (
	"time"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// FieldType constrains what a template slot accepts.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldDate   FieldType = "date"
	FieldNumber FieldType = "number"
)

// Layout names one of the built-in visual styles.
type Layout string

const (
	LayoutDefault Layout = "default"
	LayoutModern  Layout = "modern"
	LayoutClassic Layout = "classic"
	LayoutMinimal Layout = "minimal"
)

var validLayouts = map[Layout]bool{
	LayoutDefault: true,
	LayoutModern:  true,
	LayoutClassic: true,
	LayoutMinimal: true,
}

var validFieldTypes = map[FieldType]bool{
	FieldText:   true,
	FieldDate:   true,
	FieldNumber: true,
}

// ParseLayout validates an externally supplied layout name. The empty string
// selects the default style.
func ParseLayout(s string) (Layout, error) {
	if s == "" {
		return LayoutDefault, nil
	}
	l := Layout(s)
	if !validLayouts[l] {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown layout: "+s)
	}
	return l, nil
}

// Field is one named, typed slot in a template. Order matters: slots render
// in declaration order.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// Template is the rendering recipe for a class of credentials.
//
// Invariants:
//   - Field names are unique within a template
//   - Layout is one of the built-in styles
//   - Credentials reference templates but never own them; deleting a template
//     blocks new issuance without touching already-issued credentials
type Template struct {
	ID          id.TemplateID `json:"id"`
	IssuerID    id.IssuerID   `json:"issuer_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Fields      []Field       `json:"fields"`
	Layout      Layout        `json:"layout"`
	CustomHTML  string        `json:"custom_html,omitempty"`
	CustomCSS   string        `json:"custom_css,omitempty"`
	Assets      id.AssetSet   `json:"assets"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// New validates and constructs a template.
func New(templateID id.TemplateID, issuerID id.IssuerID, name string, fields []Field, layout Layout, now time.Time) (*Template, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "template name is required")
	}
	if issuerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "template requires an owning issuer")
	}
	if layout == "" {
		layout = LayoutDefault
	}
	if !validLayouts[layout] {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown layout: "+string(layout))
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	return &Template{
		ID:        templateID,
		IssuerID:  issuerID,
		Name:      name,
		Fields:    fields,
		Layout:    layout,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateFields enforces unique names and known types. Empty field lists are
// allowed: a template can render from the fixed subject/course slots alone.
func ValidateFields(fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return dErrors.New(dErrors.CodeBadRequest, "field name is required")
		}
		if seen[f.Name] {
			return dErrors.New(dErrors.CodeBadRequest, "duplicate field name: "+f.Name)
		}
		seen[f.Name] = true
		if f.Type == "" {
			continue
		}
		if !validFieldTypes[f.Type] {
			return dErrors.New(dErrors.CodeBadRequest, "unknown field type: "+string(f.Type))
		}
	}
	return nil
}

// RequiredFields returns the names of all required slots, in order.
func (t *Template) RequiredFields() []string {
	var names []string
	for _, f := range t.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}
