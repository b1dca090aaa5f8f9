package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.PDFOpener   = (*Opener)(nil)
	_ driven.PDFDocument = (*Document)(nil)
)

// errClosed is returned by reads after Close.
var errClosed = errors.New("pdf: document closed")

// Opener opens PDF files from the local filesystem.
type Opener struct{}

// NewOpener creates a new PDF opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open opens the document at path. The caller must Close it.
func (o *Opener) Open(ctx context.Context, path string) (driven.PDFDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, r, err := openReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Document{path: path, file: f, reader: r}, nil
}

// openReader wraps lpdf.Open, which panics on some malformed files.
func openReader(path string) (f *os.File, r *lpdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				_ = f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return lpdf.Open(path)
}

// Document is an open PDF file.
type Document struct {
	path   string
	file   *os.File
	reader *lpdf.Reader

	mu     sync.Mutex
	closed bool
	rows   map[int][]domain.TextRow

	// pdfcpu context, parsed on first PageImages call.
	imgOnce sync.Once
	imgCtx  *model.Context
	imgErr  error
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// LoadText extracts the text of every page in order, one line per text row.
// A page whose content stream cannot be parsed yields empty text and a
// warning; the remaining pages are still read.
func (d *Document) LoadText(ctx context.Context) ([]domain.Page, error) {
	if d.isClosed() {
		return nil, errClosed
	}

	n := d.reader.NumPage()
	pages := make([]domain.Page, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := d.layout(i)
		if err != nil {
			logger.Warn("%s: page %d has no readable text: %v", d.path, i, err)
		}
		pages = append(pages, domain.Page{Number: i, Text: rowsText(rows)})
	}

	return pages, nil
}

// PageRows returns the positioned text rows of a page, top to bottom.
// Glyphs on the same baseline are merged into runs; a space is inserted
// where the gap between glyphs looks like a word break.
func (d *Document) PageRows(page int) ([]domain.TextRow, error) {
	if d.isClosed() {
		return nil, errClosed
	}
	if page < 0 || page >= d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range: %w", page, domain.ErrInvalidInput)
	}

	rows, err := d.layout(page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return rows, nil
}

// layout parses a page's content stream once and caches the rows.
func (d *Document) layout(page int) ([]domain.TextRow, error) {
	d.mu.Lock()
	rows, ok := d.rows[page]
	d.mu.Unlock()
	if ok {
		return rows, nil
	}

	glyphs, err := pageGlyphs(d.reader.Page(page + 1))
	if err != nil {
		return nil, err
	}
	rows = layoutRows(glyphs)

	d.mu.Lock()
	if d.rows == nil {
		d.rows = make(map[int][]domain.TextRow)
	}
	d.rows[page] = rows
	d.mu.Unlock()
	return rows, nil
}

func pageGlyphs(p lpdf.Page) (glyphs []lpdf.Text, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parse content: %v", rec)
		}
	}()

	if p.V.IsNull() {
		return nil, nil
	}
	return p.Content().Text, nil
}

// layoutRows groups glyphs into rows by baseline, top to bottom.
// PDF y grows upwards.
func layoutRows(glyphs []lpdf.Text) []domain.TextRow {
	sorted := slices.Clone(glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows []domain.TextRow
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[start].Y-sorted[i].Y <= math.Max(sorted[start].FontSize, 1)*rowToleranceFactor {
			continue
		}
		if runs := mergeGlyphs(sorted[start:i]); len(runs) > 0 {
			rows = append(rows, domain.TextRow{Y: sorted[start].Y, Runs: runs})
		}
		start = i
	}
	return rows
}

// mergeGlyphs joins the glyphs of one row into runs, ordered by X.
//
// Fonts without a Widths array report zero-width glyphs that all share the
// origin of their string. Those get an estimated advance so the string
// still reads left to right.
func mergeGlyphs(glyphs []lpdf.Text) []domain.TextRun {
	sorted := slices.Clone(glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var (
		runs  []domain.TextRun
		b     strings.Builder
		cur   domain.TextRun
		end   float64
		prevX float64
		open  bool
		space bool
	)

	flush := func() {
		if !open {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		if cur.Text != "" {
			runs = append(runs, cur)
		}
		b.Reset()
		open, space = false, false
	}

	for _, g := range sorted {
		if g.S == "" || g.S == "\n" || g.S == "\r" {
			continue
		}
		size := math.Max(g.FontSize, 1)
		x, w := g.X, g.W
		if w <= 0 {
			w = size * estimatedAdvance
			if open && math.Abs(g.X-prevX) < 0.01 {
				x = end
			} else if open && x-end <= size*wordGapFactor {
				space = true
			}
		}
		prevX = g.X

		if strings.TrimSpace(g.S) == "" {
			if open {
				space = true
				end = math.Max(end, x+w)
			}
			continue
		}

		if open {
			gap := x - end
			if gap > size*runGapFactor {
				flush()
			} else if space || gap > size*wordGapFactor {
				b.WriteByte(' ')
			}
			space = false
		}
		if !open {
			cur = domain.TextRun{X: x, FontSize: g.FontSize}
			end = x
			open = true
		}
		b.WriteString(g.S)
		end = math.Max(end, x+w)
		cur.Width = end - cur.X
	}
	flush()

	return runs
}

// rowsText renders rows as lines, runs separated by a space.
func rowsText(rows []domain.TextRow) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row.Runs))
		for _, run := range row.Runs {
			parts = append(parts, run.Text)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

const (
	// wordGapFactor is the gap, relative to font size, treated as a space.
	wordGapFactor = 0.15
	// runGapFactor is the gap, relative to font size, that ends a run.
	runGapFactor = 0.6
	// rowToleranceFactor is the baseline drift, relative to font size,
	// still counted as the same row.
	rowToleranceFactor = 0.3
	// estimatedAdvance is the glyph width, relative to font size, assumed
	// when the font carries no widths.
	estimatedAdvance = 0.5
)

// PageImages returns the embedded images of a page ordered by object number.
func (d *Document) PageImages(ctx context.Context, page int) ([]domain.ImageRegion, error) {
	if d.isClosed() {
		return nil, errClosed
	}
	if page < 0 || page >= d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range: %w", page, domain.ErrInvalidInput)
	}

	d.imgOnce.Do(func() {
		d.imgCtx, d.imgErr = d.readImageContext()
	})
	if d.imgErr != nil {
		return nil, fmt.Errorf("read image objects: %w", d.imgErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	images, err := pdfcpu.ExtractPageImages(d.imgCtx, page+1, false)
	if err != nil {
		return nil, fmt.Errorf("extract images on page %d: %w", page, err)
	}

	objNrs := make([]int, 0, len(images))
	for nr := range images {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	regions := make([]domain.ImageRegion, 0, len(objNrs))
	for _, nr := range objNrs {
		img := images[nr]
		if img.Reader == nil {
			continue
		}
		data, err := io.ReadAll(img.Reader)
		if err != nil {
			return nil, fmt.Errorf("read image object %d: %w", nr, err)
		}
		regions = append(regions, domain.ImageRegion{
			Page:     page,
			Position: len(regions),
			Format:   img.FileType,
			Data:     data,
		})
	}

	return regions, nil
}

func (d *Document) readImageContext() (ctx *model.Context, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.Cmd = model.EXTRACTIMAGES

	return api.ReadValidateAndOptimize(d.file, conf)
}

// Close releases the file handle. It is safe to call more than once.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.imgCtx = nil
	d.rows = nil
	return d.file.Close()
}

func (d *Document) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
