package driven

import (
	"context"

	"github.com/medgenius/docindex/internal/core/domain"
)

// PDFOpener opens PDF documents.
type PDFOpener interface {
	// Open opens the document at path. The caller must Close it.
	Open(ctx context.Context, path string) (PDFDocument, error)
}

// PDFDocument is an open PDF. Page numbers are 0-based.
type PDFDocument interface {
	// Path returns the file path the document was opened from.
	Path() string

	// PageCount returns the number of pages.
	PageCount() int

	// LoadText extracts the text of every page in order.
	LoadText(ctx context.Context) ([]domain.Page, error)

	// PageRows returns the positioned text rows of a page, top to bottom.
	PageRows(page int) ([]domain.TextRow, error)

	// PageImages returns the embedded images of a page in native order.
	PageImages(ctx context.Context, page int) ([]domain.ImageRegion, error)

	// Close releases the underlying file. Safe to call more than once.
	Close() error
}

// TableDetector locates tables on a page.
type TableDetector interface {
	// DetectTables returns the tables found on page in detection order.
	// A page without tables yields an empty slice and a nil error.
	DetectTables(ctx context.Context, doc PDFDocument, page int) ([]domain.TableRegion, error)
}
