package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// DocumentService stores opportunity documents: bytes in blob storage,
// metadata in the document store.
type DocumentService struct {
	documents     domain.DocumentStore
	opportunities domain.OpportunityStore
	writer        domain.BlobWriter
	reader        domain.BlobReader
	logger        *slog.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(
	documents domain.DocumentStore,
	opportunities domain.OpportunityStore,
	writer domain.BlobWriter,
	reader domain.BlobReader,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		documents:     documents,
		opportunities: opportunities,
		writer:        writer,
		reader:        reader,
		logger:        logger,
	}
}

// UploadInput describes one document upload.
type UploadInput struct {
	OpportunityID string
	Name          string
	Category      domain.DocumentCategory
	ContentType   string
	SizeBytes     int64
	UploadedBy    string
	Body          io.Reader
}

// Upload stores the document body and records its metadata. The blob write
// happens first so a metadata row never points at missing bytes.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (domain.Document, error) {
	if _, err := s.opportunities.GetByID(ctx, in.OpportunityID); err != nil {
		return domain.Document{}, fmt.Errorf("document: opportunity %s: %w", in.OpportunityID, err)
	}

	id := uuid.New().String()
	storagePath := path.Join("documents", in.OpportunityID, id+path.Ext(in.Name))

	if err := s.writer.Put(ctx, storagePath, in.Body, in.ContentType); err != nil {
		return domain.Document{}, fmt.Errorf("document: store %s: %w", in.Name, err)
	}

	doc := domain.Document{
		ID:            id,
		OpportunityID: in.OpportunityID,
		Name:          in.Name,
		Category:      in.Category,
		ContentType:   in.ContentType,
		SizeBytes:     in.SizeBytes,
		StoragePath:   storagePath,
		UploadedBy:    in.UploadedBy,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return domain.Document{}, fmt.Errorf("document: record %s: %w", in.Name, err)
	}

	s.logger.InfoContext(ctx, "document: uploaded",
		slog.String("document_id", doc.ID),
		slog.String("opportunity_id", in.OpportunityID),
		slog.String("name", in.Name),
		slog.Int64("size_bytes", in.SizeBytes),
	)
	return doc, nil
}

// Download returns the document metadata and a reader over its bytes. The
// caller closes the reader.
func (s *DocumentService) Download(ctx context.Context, id string) (domain.Document, io.ReadCloser, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, nil, fmt.Errorf("document: get %s: %w", id, err)
	}

	body, err := s.reader.Get(ctx, doc.StoragePath)
	if err != nil {
		return domain.Document{}, nil, fmt.Errorf("document: read %s: %w", doc.StoragePath, err)
	}
	return doc, body, nil
}

// ListByOpportunity returns the documents attached to an opportunity.
func (s *DocumentService) ListByOpportunity(ctx context.Context, opportunityID string) ([]domain.Document, error) {
	docs, err := s.documents.ListByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("document: list for %s: %w", opportunityID, err)
	}
	return docs, nil
}
