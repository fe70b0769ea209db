package document

import (
	"mime"
	"slices"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microfinance/backend/internal/domain/shared"
)

// Upload validation defaults
const (
	DefaultMaxPageSize = 5 << 20
)

// DefaultAllowedContentTypes are the page image types accepted when none are configured
var DefaultAllowedContentTypes = []string{"image/png", "image/jpeg", "image/tiff", "application/pdf"}

// UploadLimits bounds page uploads
type UploadLimits struct {
	MaxPageSize         int64
	AllowedContentTypes []string
}

// DefaultUploadLimits returns the default upload limits
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{
		MaxPageSize:         DefaultMaxPageSize,
		AllowedContentTypes: DefaultAllowedContentTypes,
	}
}

// Validate checks size, declared content type and the sniffed type of the
// bytes. It returns the normalised content type.
func (l UploadLimits) Validate(upload PageUpload) (string, error) {
	if len(upload.Data) == 0 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "page image cannot be empty")
	}
	if l.MaxPageSize > 0 && int64(len(upload.Data)) > l.MaxPageSize {
		return "", shared.NewDomainError(shared.CodeInvalidInput,
			"page image exceeds "+strconv.FormatInt(l.MaxPageSize, 10)+" bytes")
	}

	declared, _, err := mime.ParseMediaType(upload.ContentType)
	if err != nil {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "invalid content type: "+upload.ContentType)
	}
	declared = strings.ToLower(declared)
	allowed := l.AllowedContentTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedContentTypes
	}
	if !slices.Contains(allowed, declared) {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "content type not allowed: "+declared)
	}

	detected := mimetype.Detect(upload.Data)
	if !detected.Is(declared) {
		return "", shared.NewDomainError(shared.CodeInvalidInput,
			"content does not match declared type "+declared+" (detected "+detected.String()+")")
	}
	return declared, nil
}
