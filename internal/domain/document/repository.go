package document

import (
	"context"

	"github.com/google/uuid"
)

// DocumentRepository persists documents
type DocumentRepository interface {
	FindByIdentifier(ctx context.Context, tenantID, customerID uuid.UUID, identifier string) (*Document, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Document, error)
	ExistsByIdentifier(ctx context.Context, tenantID, customerID uuid.UUID, identifier string) (bool, error)
	Save(ctx context.Context, d *Document) error
	// Delete removes the document together with all its page rows
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PageRepository persists page metadata
type PageRepository interface {
	Save(ctx context.Context, p *Page) error
	Find(ctx context.Context, tenantID, documentID uuid.UUID, pageNumber int) (*Page, error)
	FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]Page, error)
	PageNumbers(ctx context.Context, tenantID, documentID uuid.UUID) ([]int, error)
	// Delete removes page n and reports whether a row existed
	Delete(ctx context.Context, tenantID, documentID uuid.UUID, pageNumber int) (bool, error)
}

// ImageStore holds page image bytes
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
