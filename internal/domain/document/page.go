package document

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// Page is one image of a document, keyed by a non-negative page number.
// The image bytes live in an ImageStore under StorageKey.
type Page struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	DocumentID  uuid.UUID
	PageNumber  int
	ContentType string
	Size        int64
	StorageKey  string
	CreatedBy   uuid.UUID
	CreatedOn   time.Time
}

func newPage(d *Document, n int, storageKey, contentType string, size int64, actor uuid.UUID) (*Page, error) {
	if n < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "page number cannot be negative")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "page storage key is required")
	}
	if strings.TrimSpace(contentType) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "page content type is required")
	}
	if size <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "page image cannot be empty")
	}
	return &Page{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    d.TenantID,
		DocumentID:  d.ID,
		PageNumber:  n,
		ContentType: contentType,
		Size:        size,
		StorageKey:  storageKey,
		CreatedBy:   actor,
		CreatedOn:   time.Now(),
	}, nil
}

// maxReportedMissingPages bounds the page numbers named in a MISSING_PAGES error
const maxReportedMissingPages = 10

// PageKey is the image store key of one upload of page n of a document.
// Every upload gets its own key so a losing concurrent upload never
// overwrites or removes the image of the committed page.
func PageKey(tenantID, customerID, documentID uuid.UUID, n int, uploadID uuid.UUID) string {
	return fmt.Sprintf("tenants/%s/customers/%s/documents/%s/pages/%d/%s", tenantID, customerID, documentID, n, uploadID)
}

// MissingPages returns at most limit of the page numbers absent from the
// range 0..max of the given pages, in ascending order, together with the
// total number of absent pages. A document without pages is missing page 0.
func MissingPages(pageNumbers []int, limit int) ([]int, int) {
	sorted := make([]int, 0, len(pageNumbers))
	for _, n := range pageNumbers {
		if n >= 0 {
			sorted = append(sorted, n)
		}
	}
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if len(sorted) == 0 {
		return []int{0}, 1
	}

	total := sorted[len(sorted)-1] + 1 - len(sorted)
	missing := make([]int, 0, min(limit, total))
	if total == 0 {
		return missing, 0
	}
	expected := 0
	for _, n := range sorted {
		for ; expected < n && len(missing) < limit; expected++ {
			missing = append(missing, expected)
		}
		if len(missing) >= limit {
			break
		}
		expected = n + 1
	}
	return missing, total
}

func missingPagesMessage(identifier string, missing []int, total int) string {
	parts := make([]string, len(missing))
	for i, n := range missing {
		parts[i] = strconv.Itoa(n)
	}
	msg := "document " + identifier + " is missing pages " + strings.Join(parts, ", ")
	if total > len(missing) {
		msg += fmt.Sprintf(" and %d more", total-len(missing))
	}
	return msg
}
