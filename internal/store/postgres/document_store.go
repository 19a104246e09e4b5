package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// DocumentStore implements domain.DocumentStore using PostgreSQL.
type DocumentStore struct {
	pool *pgxpool.Pool
}

// NewDocumentStore creates a new DocumentStore backed by the given pool.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

const documentSelectCols = `id, opportunity_id, name, category,
	content_type, size_bytes, storage_path, uploaded_by, created_at`

func scanDocumentRow(row pgx.Row) (domain.Document, error) {
	var d domain.Document
	var category string
	err := row.Scan(
		&d.ID, &d.OpportunityID, &d.Name, &category,
		&d.ContentType, &d.SizeBytes, &d.StoragePath, &d.UploadedBy, &d.CreatedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}
	d.Category = domain.DocumentCategory(category)
	return d, nil
}

// Create inserts document metadata for a stored file.
func (s *DocumentStore) Create(ctx context.Context, doc domain.Document) error {
	const query = `
		INSERT INTO documents (
			id, opportunity_id, name, category,
			content_type, size_bytes, storage_path, uploaded_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	_, err := s.pool.Exec(ctx, query,
		doc.ID, doc.OpportunityID, doc.Name, string(doc.Category),
		doc.ContentType, doc.SizeBytes, doc.StoragePath, doc.UploadedBy,
	)
	if err != nil {
		return fmt.Errorf("postgres: create document %s: %w", doc.ID, err)
	}
	return nil
}

// GetByID retrieves document metadata by ID.
func (s *DocumentStore) GetByID(ctx context.Context, id string) (domain.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+documentSelectCols+` FROM documents WHERE id = $1`, id)

	doc, err := scanDocumentRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Document{}, domain.ErrNotFound
		}
		return domain.Document{}, fmt.Errorf("postgres: get document %s: %w", id, err)
	}
	return doc, nil
}

// ListByOpportunity returns all documents attached to an opportunity.
func (s *DocumentStore) ListByOpportunity(ctx context.Context, opportunityID string) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+documentSelectCols+` FROM documents
		 WHERE opportunity_id = $1
		 ORDER BY created_at DESC`, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list documents for %s: %w", opportunityID, err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan documents: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
