package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
	"github.com/Skysparko/trust-ledger-backend/internal/service"
)

// maxUploadBytes caps document uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// DocumentHandler serves opportunity document upload and download.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload stores a document for an opportunity. The body is multipart form
// data with a "file" part; category comes from the form.
// POST /api/admin/opportunities/{id}/documents
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	category := domain.DocumentCategory(r.FormValue("category"))
	if category == "" {
		category = domain.DocumentCategoryOther
	}

	doc, err := h.documents.Upload(r.Context(), service.UploadInput{
		OpportunityID: r.PathValue("id"),
		Name:          header.Filename,
		Category:      category,
		ContentType:   header.Header.Get("Content-Type"),
		SizeBytes:     header.Size,
		UploadedBy:    r.FormValue("uploaded_by"),
		Body:          file,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

// List returns the documents attached to an opportunity.
// GET /api/opportunities/{id}/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListByOpportunity(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}
	writeJSON(w, http.StatusOK, out)
}

// Download streams a document's bytes.
// GET /api/documents/{id}
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	doc, body, err := h.documents.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	if doc.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	}
	io.Copy(w, body)
}
