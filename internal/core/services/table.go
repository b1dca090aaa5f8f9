package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// tablePrefix introduces every serialized table.
const tablePrefix = "read this as dataframe: "

// TableExtractor turns the tables of a page into textual surrogates.
type TableExtractor struct {
	detector driven.TableDetector
}

// NewTableExtractor creates a table extractor backed by detector.
func NewTableExtractor(detector driven.TableDetector) *TableExtractor {
	return &TableExtractor{detector: detector}
}

// ExtractTables returns one surrogate per detected table, in detection order.
// Each table is forward-filled before serialization. Detection errors are
// returned to the caller.
func (e *TableExtractor) ExtractTables(ctx context.Context, doc driven.PDFDocument, page int) ([]domain.TableSurrogate, error) {
	regions, err := e.detector.DetectTables(ctx, doc, page)
	if err != nil {
		return nil, fmt.Errorf("detect tables on page %d: %w", page, err)
	}

	surrogates := make([]domain.TableSurrogate, 0, len(regions))
	for i, region := range regions {
		surrogates = append(surrogates, domain.TableSurrogate{
			Index: i,
			Text:  SerializeTable(region.ForwardFill()),
		})
	}

	return surrogates, nil
}

// SerializeTable renders a table as nested key-value groups:
//
//	read this as dataframe: {0:{0:{Name}, 1:{Dose}}, 1:{0:{aspirin}, 1:{100mg}}}
//
// Row indices are the outer keys and column indices the inner keys.
// Iteration order follows the table exactly.
func SerializeTable(table domain.TableRegion) string {
	cols := table.NumColumns()

	var b strings.Builder
	b.WriteString(tablePrefix)
	b.WriteByte('{')
	for r := 0; r < table.NumRows(); r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(r))
		b.WriteString(":{")
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Itoa(c))
			b.WriteString(":{")
			b.WriteString(table.Cell(r, c))
			b.WriteByte('}')
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')

	return b.String()
}
