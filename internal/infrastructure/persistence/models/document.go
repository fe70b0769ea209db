package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/shared"
)

// DocumentModel is the persistence model for customer documents
type DocumentModel struct {
	TenantModel
	AuditModel
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_document_customer_identifier,priority:1"`
	Identifier  string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_document_customer_identifier,priority:2"`
	Description string    `gorm:"type:text"`
	Completed   bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the model to a document
func (m *DocumentModel) ToDomain() *document.Document {
	return &document.Document{
		TenantAggregateRoot: tenantAggregateRoot(m.ID, m.TenantID),
		AuditInfo:           m.AuditModel.ToDomain(),
		CustomerID:          m.CustomerID,
		Identifier:          m.Identifier,
		Description:         m.Description,
		Completed:           m.Completed,
	}
}

// DocumentModelFromDomain converts a document to its model
func DocumentModelFromDomain(d *document.Document) *DocumentModel {
	return &DocumentModel{
		TenantModel: TenantModel{ID: d.ID, TenantID: d.TenantID},
		AuditModel:  AuditModelFromDomain(d.AuditInfo),
		CustomerID:  d.CustomerID,
		Identifier:  d.Identifier,
		Description: d.Description,
		Completed:   d.Completed,
	}
}

// DocumentPageModel holds page metadata. Image bytes live in an image store.
type DocumentPageModel struct {
	TenantModel
	DocumentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_page_document_number,priority:1"`
	PageNumber  int       `gorm:"not null;uniqueIndex:idx_page_document_number,priority:2"`
	ContentType string    `gorm:"type:varchar(128);not null"`
	Size        int64     `gorm:"not null"`
	StorageKey  string    `gorm:"type:varchar(512);not null"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedOn   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentPageModel) TableName() string {
	return "document_pages"
}

// ToDomain converts the model to a page
func (m *DocumentPageModel) ToDomain() document.Page {
	return document.Page{
		BaseEntity:  shared.BaseEntity{ID: m.ID},
		TenantID:    m.TenantID,
		DocumentID:  m.DocumentID,
		PageNumber:  m.PageNumber,
		ContentType: m.ContentType,
		Size:        m.Size,
		StorageKey:  m.StorageKey,
		CreatedBy:   m.CreatedBy,
		CreatedOn:   m.CreatedOn,
	}
}

// DocumentPageModelFromDomain converts a page to its model
func DocumentPageModelFromDomain(p *document.Page) *DocumentPageModel {
	return &DocumentPageModel{
		TenantModel: TenantModel{ID: p.ID, TenantID: p.TenantID},
		DocumentID:  p.DocumentID,
		PageNumber:  p.PageNumber,
		ContentType: p.ContentType,
		Size:        p.Size,
		StorageKey:  p.StorageKey,
		CreatedBy:   p.CreatedBy,
		CreatedOn:   p.CreatedOn,
	}
}

// PageImageModel stores page image bytes when storage.backend=database
type PageImageModel struct {
	StorageKey  string    `gorm:"type:varchar(512);primaryKey"`
	ContentType string    `gorm:"type:varchar(128);not null"`
	Data        []byte    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PageImageModel) TableName() string {
	return "document_page_images"
}
