package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"vouch/internal/issuer/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// Postgres persists issuers in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, issuer *models.Issuer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issuers (
			id, name, email, description, status, ledger_identity,
			logo, signature, seal, credentials_issued, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		issuer.ID.String(), issuer.Name, issuer.Email, issuer.Description,
		string(issuer.Status), issuer.LedgerIdentity,
		issuer.Assets.Logo.String(), issuer.Assets.Signature.String(), issuer.Assets.Seal.String(),
		issuer.CredentialsIssued, issuer.CreatedAt, issuer.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create issuer: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, issuerID id.IssuerID) (*models.Issuer, error) {
	var (
		issuer    models.Issuer
		rawID     string
		status    string
		logo      string
		signature string
		seal      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, description, status, ledger_identity,
		       logo, signature, seal, credentials_issued, created_at, updated_at
		FROM issuers WHERE id = $1`, issuerID.String(),
	).Scan(&rawID, &issuer.Name, &issuer.Email, &issuer.Description, &status,
		&issuer.LedgerIdentity, &logo, &signature, &seal,
		&issuer.CredentialsIssued, &issuer.CreatedAt, &issuer.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issuer: %w", err)
	}
	parsed, err := id.ParseIssuerID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored issuer id: %w", err)
	}
	issuer.ID = parsed
	issuer.Status = models.Status(status)
	issuer.Assets = id.AssetSet{
		Logo:      id.AssetRef(logo),
		Signature: id.AssetRef(signature),
		Seal:      id.AssetRef(seal),
	}
	return &issuer, nil
}

func (s *Postgres) IncrementIssued(ctx context.Context, issuerID id.IssuerID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE issuers SET credentials_issued = credentials_issued + 1 WHERE id = $1`,
		issuerID.String())
	if err != nil {
		return fmt.Errorf("increment issued count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
