package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"vouch/internal/credential/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// Postgres persists credentials in PostgreSQL. Attributes are stored as
// jsonb to preserve the ordered snapshot exactly as issued.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, c *models.Credential) error {
	attrs, err := json.Marshal(c.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	query := `
		INSERT INTO credentials (
			id, issuer_id, template_id, subject_name, subject_contact, course,
			attributes, status, issued_at, ledger_ref, store_ref,
			revocation_reason, revoked_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(ctx, query,
		c.ID.String(), c.IssuerID.String(), c.TemplateID.String(),
		c.SubjectName, c.SubjectContact, c.Course,
		attrs, string(c.Status), c.IssuedAt, c.LedgerRef, nullString(c.StoreRef),
		nullString(c.RevocationReason), nullTime(c.RevokedAt), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx, selectCredential+` WHERE id = $1`, credentialID.String())
	c, err := scanCredential(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return c, nil
}

// Execute validates and mutates a credential inside a transaction holding a
// row lock, so concurrent revocations serialize on the database.
func (s *Postgres) Execute(ctx context.Context, credentialID id.CredentialID,
	validate func(*models.Credential) error,
	mutate func(*models.Credential)) (*models.Credential, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, selectCredential+` WHERE id = $1 FOR UPDATE`, credentialID.String())
	c, err := scanCredential(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock credential: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, err
	}
	mutate(c)

	_, err = tx.ExecContext(ctx, `
		UPDATE credentials
		SET status = $2, revocation_reason = $3, revoked_at = $4, updated_at = $5
		WHERE id = $1`,
		c.ID.String(), string(c.Status), nullString(c.RevocationReason), nullTime(c.RevokedAt), c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update credential: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

func (s *Postgres) ListByIssuer(ctx context.Context, issuerID id.IssuerID) ([]*models.Credential, error) {
	rows, err := s.db.QueryContext(ctx, selectCredential+` WHERE issuer_id = $1 ORDER BY issued_at DESC`, issuerID.String())
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []*models.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const selectCredential = `
	SELECT id, issuer_id, template_id, subject_name, subject_contact, course,
	       attributes, status, issued_at, ledger_ref, store_ref,
	       revocation_reason, revoked_at, created_at, updated_at
	FROM credentials`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.Credential, error) {
	var (
		c          models.Credential
		credID     string
		issuerID   string
		templateID string
		attrs      []byte
		status     string
		storeRef   sql.NullString
		reason     sql.NullString
		revokedAt  sql.NullTime
	)
	err := row.Scan(&credID, &issuerID, &templateID,
		&c.SubjectName, &c.SubjectContact, &c.Course,
		&attrs, &status, &c.IssuedAt, &c.LedgerRef, &storeRef,
		&reason, &revokedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = id.CredentialID(credID)
	parsedIssuer, err := id.ParseIssuerID(issuerID)
	if err != nil {
		return nil, fmt.Errorf("stored issuer id: %w", err)
	}
	c.IssuerID = parsedIssuer
	parsedTemplate, err := id.ParseTemplateID(templateID)
	if err != nil {
		return nil, fmt.Errorf("stored template id: %w", err)
	}
	c.TemplateID = parsedTemplate
	c.Status = models.Status(status)
	if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	if storeRef.Valid {
		c.StoreRef = storeRef.String
	}
	if reason.Valid {
		c.RevocationReason = reason.String
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		c.RevokedAt = &t
	}
	return &c, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
