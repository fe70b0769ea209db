package persistence

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/infrastructure/persistence/models"
	"github.com/microfinance/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByIdentifier finds a document of a customer by its identifier
func (r *GormDocumentRepository) FindByIdentifier(ctx context.Context, tenantID, customerID uuid.UUID, identifier string) (*document.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ? AND identifier = ?", customerID, identifier).
		First(&model).Error; err != nil {
		return nil, translateError(err, "Document", identifier)
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the documents of a customer ordered by identifier
func (r *GormDocumentRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]document.Document, error) {
	var rows []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ?", customerID).
		Order("identifier ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]document.Document, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, nil
}

// ExistsByIdentifier reports whether the customer already has the identifier
func (r *GormDocumentRepository) ExistsByIdentifier(ctx context.Context, tenantID, customerID uuid.UUID, identifier string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ? AND identifier = ?", customerID, identifier).
		Count(&count).Error
	return count > 0, err
}

// Save inserts or updates a document
func (r *GormDocumentRepository) Save(ctx context.Context, d *document.Document) error {
	err := r.db.WithContext(ctx).Save(models.DocumentModelFromDomain(d)).Error
	return translateError(err, "Document", d.Identifier)
}

// Delete removes the document and its page rows
func (r *GormDocumentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(tenant.Scope(tenantID)).
			Where("document_id = ?", id).
			Delete(&models.DocumentPageModel{}).Error; err != nil {
			return err
		}
		return tx.Scopes(tenant.Scope(tenantID)).
			Where("id = ?", id).
			Delete(&models.DocumentModel{}).Error
	})
}

var _ document.DocumentRepository = (*GormDocumentRepository)(nil)

// GormPageRepository implements document.PageRepository using GORM
type GormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository creates a new GormPageRepository
func NewGormPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

// Save inserts or updates page metadata
func (r *GormPageRepository) Save(ctx context.Context, p *document.Page) error {
	err := r.db.WithContext(ctx).Save(models.DocumentPageModelFromDomain(p)).Error
	return translateError(err, "Page", strconv.Itoa(p.PageNumber))
}

// Find returns one page of a document
func (r *GormPageRepository) Find(ctx context.Context, tenantID, documentID uuid.UUID, pageNumber int) (*document.Page, error) {
	var model models.DocumentPageModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ? AND page_number = ?", documentID, pageNumber).
		First(&model).Error; err != nil {
		return nil, translateError(err, "Page", strconv.Itoa(pageNumber))
	}
	page := model.ToDomain()
	return &page, nil
}

// FindByDocument returns the pages of a document in page order
func (r *GormPageRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]document.Page, error) {
	var rows []models.DocumentPageModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ?", documentID).
		Order("page_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	pages := make([]document.Page, len(rows))
	for i := range rows {
		pages[i] = rows[i].ToDomain()
	}
	return pages, nil
}

// PageNumbers returns the existing page numbers of a document, ascending
func (r *GormPageRepository) PageNumbers(ctx context.Context, tenantID, documentID uuid.UUID) ([]int, error) {
	var numbers []int
	err := r.db.WithContext(ctx).
		Model(&models.DocumentPageModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ?", documentID).
		Order("page_number ASC").
		Pluck("page_number", &numbers).Error
	return numbers, err
}

// Delete removes page n and reports whether it existed
func (r *GormPageRepository) Delete(ctx context.Context, tenantID, documentID uuid.UUID, pageNumber int) (bool, error) {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ? AND page_number = ?", documentID, pageNumber).
		Delete(&models.DocumentPageModel{})
	return result.RowsAffected > 0, result.Error
}

var _ document.PageRepository = (*GormPageRepository)(nil)

// GormImageStore implements document.ImageStore on the document_page_images table
type GormImageStore struct {
	db *gorm.DB
}

// NewGormImageStore creates an image store backed by the database
func NewGormImageStore(db *gorm.DB) *GormImageStore {
	return &GormImageStore{db: db}
}

// Put stores or replaces the image under key
func (s *GormImageStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	return s.db.WithContext(ctx).Save(&models.PageImageModel{
		StorageKey:  key,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}).Error
}

// Get returns the image stored under key
func (s *GormImageStore) Get(ctx context.Context, key string) ([]byte, error) {
	var model models.PageImageModel
	if err := s.db.WithContext(ctx).First(&model, "storage_key = ?", key).Error; err != nil {
		return nil, translateError(err, "PageImage", key)
	}
	return model.Data, nil
}

// Delete removes the image under key. Missing keys are ignored.
func (s *GormImageStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.PageImageModel{}).Error
}

var _ document.ImageStore = (*GormImageStore)(nil)
