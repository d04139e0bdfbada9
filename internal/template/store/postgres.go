package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"vouch/internal/template/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// Postgres persists templates in PostgreSQL. Fields are jsonb so declaration
// order survives round trips.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, t *models.Template) error {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (
			id, issuer_id, name, description, fields, layout,
			custom_html, custom_css, logo, signature, seal, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID.String(), t.IssuerID.String(), t.Name, t.Description, fields, string(t.Layout),
		t.CustomHTML, t.CustomCSS,
		t.Assets.Logo.String(), t.Assets.Signature.String(), t.Assets.Seal.String(),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, templateID id.TemplateID) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx, selectTemplate+` WHERE id = $1`, templateID.String())
	t, err := scanTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

func (s *Postgres) Update(ctx context.Context, t *models.Template) error {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET name = $2, description = $3, fields = $4, layout = $5,
		    custom_html = $6, custom_css = $7, logo = $8, signature = $9, seal = $10,
		    updated_at = $11
		WHERE id = $1`,
		t.ID.String(), t.Name, t.Description, fields, string(t.Layout),
		t.CustomHTML, t.CustomCSS,
		t.Assets.Logo.String(), t.Assets.Signature.String(), t.Assets.Seal.String(),
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, templateID id.TemplateID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, templateID.String())
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) ListByIssuer(ctx context.Context, issuerID id.IssuerID) ([]*models.Template, error) {
	rows, err := s.db.QueryContext(ctx, selectTemplate+` WHERE issuer_id = $1 ORDER BY created_at DESC`, issuerID.String())
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const selectTemplate = `
	SELECT id, issuer_id, name, description, fields, layout,
	       custom_html, custom_css, logo, signature, seal, created_at, updated_at
	FROM templates`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	var (
		t          models.Template
		templateID string
		issuerID   string
		fields     []byte
		layout     string
		logo       string
		signature  string
		seal       string
	)
	err := row.Scan(&templateID, &issuerID, &t.Name, &t.Description, &fields, &layout,
		&t.CustomHTML, &t.CustomCSS, &logo, &signature, &seal, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	parsedID, err := id.ParseTemplateID(templateID)
	if err != nil {
		return nil, fmt.Errorf("stored template id: %w", err)
	}
	t.ID = parsedID
	parsedIssuer, err := id.ParseIssuerID(issuerID)
	if err != nil {
		return nil, fmt.Errorf("stored issuer id: %w", err)
	}
	t.IssuerID = parsedIssuer
	t.Layout = models.Layout(layout)
	if err := json.Unmarshal(fields, &t.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	t.Assets = id.AssetSet{
		Logo:      id.AssetRef(logo),
		Signature: id.AssetRef(signature),
		Seal:      id.AssetRef(seal),
	}
	return &t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
