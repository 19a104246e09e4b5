package domain

import "time"

// DocumentCategory groups opportunity documents for display.
type DocumentCategory string

const (
	DocumentCategoryProspectus DocumentCategory = "prospectus"
	DocumentCategoryFinancial  DocumentCategory = "financial"
	DocumentCategoryLegal      DocumentCategory = "legal"
	DocumentCategoryOther      DocumentCategory = "other"
)

// Document is metadata for a file attached to an opportunity. The bytes
// themselves live in blob storage under StoragePath.
type Document struct {
	ID            string
	OpportunityID string
	Name          string
	Category      DocumentCategory
	ContentType   string
	SizeBytes     int64
	StoragePath   string
	UploadedBy    string
	CreatedAt     time.Time
}
