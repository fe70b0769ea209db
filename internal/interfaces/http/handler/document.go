package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	documentapp "github.com/microfinance/backend/internal/application/document"
	"github.com/microfinance/backend/internal/interfaces/http/dto"
)

// PageFormField is the multipart field carrying a page image
const PageFormField = "image"

// DocumentHandler handles /customers/:id/documents
type DocumentHandler struct {
	BaseHandler
	documents DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Create handles POST /customers/:id/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req documentapp.CreateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.documents.Create(c.Request.Context(), tenantID, c.Param("id"), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// List handles GET /customers/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	docs, err := h.documents.List(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, docs)
}

// Get handles GET /customers/:id/documents/:docId
func (h *DocumentHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	doc, err := h.documents.Get(c.Request.Context(), tenantID, c.Param("id"), c.Param("docId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Change handles PUT /customers/:id/documents/:docId
func (h *DocumentHandler) Change(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req documentapp.ChangeDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Change(c.Request.Context(), tenantID, c.Param("id"), c.Param("docId"), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, doc)
}

// Delete handles DELETE /customers/:id/documents/:docId
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.documents.Delete(c.Request.Context(), tenantID, c.Param("id"), c.Param("docId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, nil)
}

// ListPages handles GET /customers/:id/documents/:docId/pages
func (h *DocumentHandler) ListPages(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	pages, err := h.documents.ListPages(c.Request.Context(), tenantID, c.Param("id"), c.Param("docId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pages)
}

// AddPage handles POST /customers/:id/documents/:docId/pages/:page. The image
// is read from the "image" multipart field or, for any other content type,
// from the raw request body.
func (h *DocumentHandler) AddPage(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}
	pageNumber, ok := h.pageNumberParam(c)
	if !ok {
		return
	}

	upload, err := readPageUpload(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}

	page, err := h.documents.AddPage(c.Request.Context(), tenantID, c.Param("id"), c.Param("docId"), pageNumber, actor, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, page)
}

// GetPage handles GET /customers/:id/documents/:docId/pages/:page and
// streams the stored image
func (h *DocumentHandler) GetPage(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	pageNumber, ok := h.pageNumberParam(c)
	if !ok {
		return
	}

	img, err := h.documents.GetPage(c.Request.Context(), tenantID, c.Param("id"), c.Param("docId"), pageNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Length", strconv.Itoa(len(img.Data)))
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// DeletePage handles DELETE /customers/:id/documents/:docId/pages/:page
func (h *DocumentHandler) DeletePage(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	pageNumber, ok := h.pageNumberParam(c)
	if !ok {
		return
	}

	if err := h.documents.DeletePage(c.Request.Context(), tenantID, c.Param("id"), c.Param("docId"), pageNumber); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, nil)
}

// Complete handles POST /customers/:id/documents/:docId/completed
func (h *DocumentHandler) Complete(c *gin.Context) {
	tenantID, actor, ok := h.identity(c)
	if !ok {
		return
	}

	var req documentapp.CompleteDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Complete(c.Request.Context(), tenantID, c.Param("id"), c.Param("docId"), actor, *req.Completed)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, doc)
}

var errMissingImage = errors.New("missing page image")

func readPageUpload(c *gin.Context) (documentapp.PageUpload, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile(PageFormField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return documentapp.PageUpload{}, errMissingImage
			}
			return documentapp.PageUpload{}, err
		}
		data, err := readFormFile(fh)
		if err != nil {
			return documentapp.PageUpload{}, err
		}
		return documentapp.PageUpload{ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return documentapp.PageUpload{}, err
	}
	return documentapp.PageUpload{ContentType: c.GetHeader("Content-Type"), Data: data}, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *DocumentHandler) uploadError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
			"Page upload exceeds "+strconv.FormatInt(maxBytesErr.Limit, 10)+" bytes")
	case errors.Is(err, errMissingImage):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Multipart field \""+PageFormField+"\" is required")
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Unreadable page upload")
	}
}
