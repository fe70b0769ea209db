package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentService runs the document completion workflow. Page images live
// in an ImageStore outside the database transaction: they are written
// before the page row commits and removed after the row is gone.
type DocumentService struct {
	uow    uow.UnitOfWork
	images document.ImageStore
	limits UploadLimits
	logger *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(u uow.UnitOfWork, images document.ImageStore, limits UploadLimits, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{uow: u, images: images, limits: limits, logger: logger}
}

// Create adds an open document to a customer
func (s *DocumentService) Create(ctx context.Context, tenantID uuid.UUID, customerIdentifier string, actor uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	var resp DocumentResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, customerIdentifier)
		if err != nil {
			return err
		}
		exists, err := repos.Documents.ExistsByIdentifier(ctx, tenantID, c.ID, req.Identifier)
		if err != nil {
			return err
		}
		if exists {
			return shared.AlreadyExists("Document", req.Identifier)
		}

		d, err := document.NewDocument(tenantID, c.ID, req.Identifier, req.Description, actor)
		if err != nil {
			return err
		}
		if err := repos.Documents.Save(ctx, d); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, d); err != nil {
			return err
		}
		resp = ToDocumentResponse(c.Identifier, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Change replaces the description of an open document
func (s *DocumentService) Change(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, actor uuid.UUID, req ChangeDocumentRequest) (*DocumentResponse, error) {
	if req.Identifier != "" && req.Identifier != identifier {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "document identifier cannot be changed")
	}

	var resp DocumentResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		if err := d.Change(req.Description, actor); err != nil {
			return err
		}
		if err := repos.Documents.Save(ctx, d); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, d); err != nil {
			return err
		}
		resp = ToDocumentResponse(c.Identifier, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns one document
func (s *DocumentService) Get(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) (*DocumentResponse, error) {
	var resp DocumentResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		resp = ToDocumentResponse(c.Identifier, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns the documents of a customer
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, customerIdentifier string) ([]DocumentResponse, error) {
	var resp []DocumentResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, customerIdentifier)
		if err != nil {
			return err
		}
		docs, err := repos.Documents.FindByCustomer(ctx, tenantID, c.ID)
		if err != nil {
			return err
		}
		resp = make([]DocumentResponse, len(docs))
		for i := range docs {
			resp[i] = ToDocumentResponse(c.Identifier, &docs[i])
		}
		return nil
	})
	return resp, err
}

// Delete removes an open document with all its pages
func (s *DocumentService) Delete(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) error {
	var keys []string
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		_, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		if err := d.MarkDeleted(); err != nil {
			return err
		}
		pages, err := repos.Pages.FindByDocument(ctx, tenantID, d.ID)
		if err != nil {
			return err
		}
		if err := repos.Documents.Delete(ctx, tenantID, d.ID); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, d); err != nil {
			return err
		}
		for _, p := range pages {
			keys = append(keys, p.StorageKey)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.removeImages(ctx, keys...)
	return nil
}

// AddPage stores a new page. The page number must not exist yet.
func (s *DocumentService) AddPage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int, actor uuid.UUID, upload PageUpload) (*PageResponse, error) {
	contentType, err := s.limits.Validate(upload)
	if err != nil {
		return nil, err
	}
	if pageNumber < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "page number cannot be negative")
	}

	// resolve a storage key unique to this upload and reject early without
	// holding a transaction while the image is uploaded
	var key string
	err = s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		if err := d.EnsureOpen(); err != nil {
			return err
		}
		key = document.PageKey(tenantID, c.ID, d.ID, pageNumber, uuid.New())
		return ensurePageAbsent(ctx, repos, d, pageNumber)
	})
	if err != nil {
		return nil, err
	}

	if err := s.images.Put(ctx, key, contentType, upload.Data); err != nil {
		return nil, fmt.Errorf("storing page image: %w", err)
	}

	var resp PageResponse
	err = s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		_, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		if err := ensurePageAbsent(ctx, repos, d, pageNumber); err != nil {
			return err
		}
		page, err := d.AddPage(pageNumber, key, contentType, int64(len(upload.Data)), actor)
		if err != nil {
			return err
		}
		if err := repos.Pages.Save(ctx, page); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, d); err != nil {
			return err
		}
		resp = ToPageResponse(page)
		return nil
	})
	if err != nil {
		s.removeImages(ctx, key)
		return nil, err
	}
	return &resp, nil
}

// GetPage returns the image of one page
func (s *DocumentService) GetPage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int) (*PageImage, error) {
	var page *document.Page
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		_, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		page, err = repos.Pages.Find(ctx, tenantID, d.ID, pageNumber)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NotFound("Page", fmt.Sprintf("%d of document %s", pageNumber, identifier))
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := s.images.Get(ctx, page.StorageKey)
	if err != nil {
		return nil, err
	}
	return &PageImage{ContentType: page.ContentType, Data: data}, nil
}

// ListPages returns the page metadata of a document ordered by page number
func (s *DocumentService) ListPages(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) ([]PageResponse, error) {
	var resp []PageResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		_, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		pages, err := repos.Pages.FindByDocument(ctx, tenantID, d.ID)
		if err != nil {
			return err
		}
		resp = make([]PageResponse, len(pages))
		for i := range pages {
			resp[i] = ToPageResponse(&pages[i])
		}
		return nil
	})
	return resp, err
}

// DeletePage removes a page of an open document. A missing page is not an error.
func (s *DocumentService) DeletePage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int) error {
	var key string
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		_, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		if err := d.EnsureOpen(); err != nil {
			return err
		}
		page, err := repos.Pages.Find(ctx, tenantID, d.ID, pageNumber)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil
			}
			return err
		}
		existed, err := repos.Pages.Delete(ctx, tenantID, d.ID, pageNumber)
		if err != nil {
			return err
		}
		if !existed {
			return nil
		}
		if err := d.RemovePage(pageNumber); err != nil {
			return err
		}
		key = page.StorageKey
		return uow.PublishEvents(ctx, repos, d)
	})
	if err != nil {
		return err
	}

	if key != "" {
		s.removeImages(ctx, key)
	}
	return nil
}

// Complete applies the one-way completion gate of a document
func (s *DocumentService) Complete(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, actor uuid.UUID, completed bool) (*DocumentResponse, error) {
	var resp DocumentResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, d, err := findDocument(ctx, repos, tenantID, customerIdentifier, identifier)
		if err != nil {
			return err
		}
		pageNumbers, err := repos.Pages.PageNumbers(ctx, tenantID, d.ID)
		if err != nil {
			return err
		}
		if err := d.Complete(completed, pageNumbers, actor); err != nil {
			return err
		}
		if err := repos.Documents.Save(ctx, d); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, d); err != nil {
			return err
		}
		resp = ToDocumentResponse(c.Identifier, d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document completed",
		zap.String("customer", customerIdentifier),
		zap.String("document", identifier))
	return &resp, nil
}

// removeImages deletes images whose rows are gone. Failures leave orphaned
// objects behind and are only logged.
func (s *DocumentService) removeImages(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete page image",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}

func ensurePageAbsent(ctx context.Context, repos uow.Repositories, d *document.Document, pageNumber int) error {
	_, err := repos.Pages.Find(ctx, d.TenantID, d.ID, pageNumber)
	if err == nil {
		return shared.AlreadyExists("Page", fmt.Sprintf("%d of document %s", pageNumber, d.Identifier))
	}
	if shared.IsNotFound(err) {
		return nil
	}
	return err
}

func findCustomer(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, identifier string) (*customer.Customer, error) {
	c, err := repos.Customers.FindByIdentifier(ctx, tenantID, identifier)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NotFound("Customer", identifier)
		}
		return nil, fmt.Errorf("loading customer %s: %w", identifier, err)
	}
	return c, nil
}

func findDocument(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, customerIdentifier, identifier string) (*customer.Customer, *document.Document, error) {
	c, err := findCustomer(ctx, repos, tenantID, customerIdentifier)
	if err != nil {
		return nil, nil, err
	}
	d, err := repos.Documents.FindByIdentifier(ctx, tenantID, c.ID, identifier)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, nil, shared.NotFound("Document", identifier)
		}
		return nil, nil, fmt.Errorf("loading document %s: %w", identifier, err)
	}
	return c, d, nil
}
