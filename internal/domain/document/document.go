package document

import (
	"strings"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// Error codes for document rule violations
const (
	CodeDocumentCompleted = "DOCUMENT_COMPLETED"
	CodeMissingPages      = "MISSING_PAGES"
)

// Document is a multi-page customer document. Once completed it can no
// longer be changed, re-opened or deleted.
type Document struct {
	shared.TenantAggregateRoot
	// CreatedBy/CreatedOn are overwritten with the completing actor and time
	// when the document is completed
	shared.AuditInfo
	CustomerID  uuid.UUID
	Identifier  string
	Description string
	Completed   bool
}

// NewDocument creates an open document for a customer
func NewDocument(tenantID, customerID uuid.UUID, identifier, description string, actor uuid.UUID) (*Document, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "document identifier cannot be empty")
	}
	if len(identifier) > 32 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "document identifier cannot exceed 32 characters")
	}

	d := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AuditInfo:           shared.NewAuditInfo(actor),
		CustomerID:          customerID,
		Identifier:          identifier,
		Description:         description,
	}
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentCreated, d))
	return d, nil
}

// EnsureOpen rejects any mutation of a completed document
func (d *Document) EnsureOpen() error {
	if d.Completed {
		return shared.NewDomainError(CodeDocumentCompleted, "document "+d.Identifier+" is completed and cannot be changed")
	}
	return nil
}

// Change replaces the description
func (d *Document) Change(description string, actor uuid.UUID) error {
	if err := d.EnsureOpen(); err != nil {
		return err
	}
	d.Description = description
	d.Touch(actor)
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentChanged, d))
	return nil
}

// Complete applies the one-way completion gate. completed=false is never
// accepted: an open document has nothing to uncomplete and a completed one
// cannot be uncompleted. completed=true requires a contiguous page range.
func (d *Document) Complete(completed bool, pageNumbers []int, actor uuid.UUID) error {
	if !completed {
		if d.Completed {
			return shared.NewDomainError(CodeDocumentCompleted, "document "+d.Identifier+" cannot be uncompleted")
		}
		return shared.NewDomainError(shared.CodeInvalidInput, "document "+d.Identifier+" is not completed")
	}
	if err := d.EnsureOpen(); err != nil {
		return err
	}
	if missing, total := MissingPages(pageNumbers, maxReportedMissingPages); total > 0 {
		return shared.NewDomainError(CodeMissingPages, missingPagesMessage(d.Identifier, missing, total))
	}

	d.Completed = true
	d.AuditInfo = shared.NewAuditInfo(actor)
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentCompleted, d))
	return nil
}

// MarkDeleted records the deletion of an open document
func (d *Document) MarkDeleted() error {
	if err := d.EnsureOpen(); err != nil {
		return err
	}
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentDeleted, d))
	return nil
}

// AddPage creates page n whose image is stored under storageKey. Pages can
// only be added while the document is open.
func (d *Document) AddPage(n int, storageKey, contentType string, size int64, actor uuid.UUID) (*Page, error) {
	if err := d.EnsureOpen(); err != nil {
		return nil, err
	}
	p, err := newPage(d, n, storageKey, contentType, size, actor)
	if err != nil {
		return nil, err
	}
	d.AddDomainEvent(NewPageEvent(EventTypeDocumentPageAdded, d, n))
	return p, nil
}

// RemovePage records the removal of page n
func (d *Document) RemovePage(n int) error {
	if err := d.EnsureOpen(); err != nil {
		return err
	}
	d.AddDomainEvent(NewPageEvent(EventTypeDocumentPageDeleted, d, n))
	return nil
}
