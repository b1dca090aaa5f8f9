package pdf

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.TableDetector = (*LayoutDetector)(nil)

const (
	// DefaultCellGap is the horizontal gap, in page units, that separates cells.
	DefaultCellGap = 12.0

	// DefaultMinRows is the minimum number of consecutive rows in a table.
	DefaultMinRows = 2

	// DefaultMinColumns is the minimum number of cells in a table row.
	DefaultMinColumns = 2
)

// LayoutDetector finds tables by aligning text runs into columns.
// A table is a block of consecutive rows that split into cells under
// shared columns. Columns are anchored on the row with the most cells.
type LayoutDetector struct {
	cellGap    float64
	minRows    int
	minColumns int
}

// DetectorOption configures a LayoutDetector.
type DetectorOption func(*LayoutDetector)

// WithCellGap sets the gap that separates two cells on a row.
func WithCellGap(gap float64) DetectorOption {
	return func(d *LayoutDetector) {
		if gap > 0 {
			d.cellGap = gap
		}
	}
}

// WithMinRows sets the minimum table height.
func WithMinRows(n int) DetectorOption {
	return func(d *LayoutDetector) {
		if n > 1 {
			d.minRows = n
		}
	}
}

// WithMinColumns sets the minimum table width.
func WithMinColumns(n int) DetectorOption {
	return func(d *LayoutDetector) {
		if n > 1 {
			d.minColumns = n
		}
	}
}

// NewLayoutDetector creates a detector with the given options.
func NewLayoutDetector(opts ...DetectorOption) *LayoutDetector {
	d := &LayoutDetector{
		cellGap:    DefaultCellGap,
		minRows:    DefaultMinRows,
		minColumns: DefaultMinColumns,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectTables returns the tables found on page, top to bottom.
func (d *LayoutDetector) DetectTables(ctx context.Context, doc driven.PDFDocument, page int) ([]domain.TableRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := doc.PageRows(page)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	return d.Detect(page, rows), nil
}

// Detect finds tables in rows already ordered top to bottom.
//
// A block opens on a row with at least MinColumns cells. Inside a block,
// a row with fewer cells is kept when every cell sits under a known column
// and stops short of the next one; its missing columns stay empty.
func (d *LayoutDetector) Detect(page int, rows []domain.TextRow) []domain.TableRegion {
	tables := []domain.TableRegion{}

	var (
		block   [][]cell
		anchors []float64
	)
	emit := func() {
		if len(block) >= d.minRows {
			tables = append(tables, domain.TableRegion{Page: page, Rows: alignColumns(block)})
		}
		block, anchors = nil, nil
	}

	for _, row := range rows {
		cells := d.splitCells(row.Runs)
		switch {
		case len(cells) >= d.minColumns:
			block = append(block, cells)
			if len(cells) > len(anchors) {
				anchors = lefts(cells)
			}
		case len(block) > 0 && len(cells) > 0 && d.fitsColumns(cells, anchors):
			block = append(block, cells)
		default:
			emit()
		}
	}
	emit()

	return tables
}

// fitsColumns reports whether every cell starts within the cell gap of an
// anchor and ends before the following anchor.
func (d *LayoutDetector) fitsColumns(cells []cell, anchors []float64) bool {
	for _, c := range cells {
		col := nearest(anchors, c.left)
		if math.Abs(anchors[col]-c.left) > d.cellGap {
			return false
		}
		if col+1 < len(anchors) && c.right >= anchors[col+1] {
			return false
		}
	}
	return true
}

func lefts(cells []cell) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = c.left
	}
	return out
}

type cell struct {
	left  float64
	right float64
	text  string
}

// splitCells groups runs into cells wherever the gap exceeds the cell gap.
func (d *LayoutDetector) splitCells(runs []domain.TextRun) []cell {
	var cells []cell
	for _, run := range runs {
		text := strings.TrimSpace(run.Text)
		if text == "" {
			continue
		}
		if n := len(cells); n > 0 && run.X-cells[n-1].right <= d.cellGap {
			last := &cells[n-1]
			last.text += " " + text
			last.right = math.Max(last.right, run.Right())
			continue
		}
		cells = append(cells, cell{left: run.X, right: run.Right(), text: text})
	}
	return cells
}

// alignColumns snaps each row's cells to the anchors of the widest row.
// Cells that land on the same anchor are joined; unfilled columns stay "".
func alignColumns(block [][]cell) [][]string {
	widest := 0
	for i, cells := range block {
		if len(cells) > len(block[widest]) {
			widest = i
		}
	}

	anchors := lefts(block[widest])

	out := make([][]string, len(block))
	for r, cells := range block {
		row := make([]string, len(anchors))
		for _, c := range cells {
			col := nearest(anchors, c.left)
			if row[col] != "" {
				row[col] += " " + c.text
			} else {
				row[col] = c.text
			}
		}
		out[r] = row
	}
	return out
}

func nearest(anchors []float64, x float64) int {
	best := 0
	for i := 1; i < len(anchors); i++ {
		if math.Abs(anchors[i]-x) < math.Abs(anchors[best]-x) {
			best = i
		}
	}
	return best
}
