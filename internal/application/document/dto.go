package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/document"
)

// CreateDocumentRequest creates an open document
type CreateDocumentRequest struct {
	Identifier  string `json:"identifier" binding:"required,min=1,max=32"`
	Description string `json:"description" binding:"max=4096"`
}

// ChangeDocumentRequest replaces the description of an open document.
// Identifier may be repeated but not changed.
type ChangeDocumentRequest struct {
	Identifier  string `json:"identifier" binding:"omitempty,max=32"`
	Description string `json:"description" binding:"max=4096"`
}

// CompleteDocumentRequest applies the completion gate
type CompleteDocumentRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// PageUpload is an uploaded page image
type PageUpload struct {
	ContentType string
	Data        []byte
}

// PageImage is a stored page image
type PageImage struct {
	ContentType string
	Data        []byte
}

// DocumentResponse is a document in API responses
type DocumentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	CustomerIdentifier string     `json:"customer_identifier"`
	Identifier         string     `json:"identifier"`
	Description        string     `json:"description,omitempty"`
	Completed          bool       `json:"completed"`
	CreatedBy          uuid.UUID  `json:"created_by"`
	CreatedOn          time.Time  `json:"created_on"`
	LastModifiedBy     *uuid.UUID `json:"last_modified_by,omitempty"`
	LastModifiedOn     *time.Time `json:"last_modified_on,omitempty"`
}

// PageResponse is page metadata in API responses
type PageResponse struct {
	PageNumber  int       `json:"page_number"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedOn   time.Time `json:"created_on"`
}

// ToDocumentResponse converts a document to its response DTO
func ToDocumentResponse(customerIdentifier string, d *document.Document) DocumentResponse {
	return DocumentResponse{
		ID:                 d.ID,
		CustomerIdentifier: customerIdentifier,
		Identifier:         d.Identifier,
		Description:        d.Description,
		Completed:          d.Completed,
		CreatedBy:          d.CreatedBy,
		CreatedOn:          d.CreatedOn,
		LastModifiedBy:     d.LastModifiedBy,
		LastModifiedOn:     d.LastModifiedOn,
	}
}

// ToPageResponse converts page metadata to its response DTO
func ToPageResponse(p *document.Page) PageResponse {
	return PageResponse{
		PageNumber:  p.PageNumber,
		ContentType: p.ContentType,
		Size:        p.Size,
		CreatedBy:   p.CreatedBy,
		CreatedOn:   p.CreatedOn,
	}
}
