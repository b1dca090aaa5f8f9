package domain

import (
	"path/filepath"
	"strings"
)

// Page is the extracted text of a single PDF page.
type Page struct {
	// Number is the 0-based page index within the document.
	Number int

	// Text is the raw text content of the page.
	Text string
}

// HasText returns true if the page carries non-whitespace text.
func (p Page) HasText() bool {
	return strings.TrimSpace(p.Text) != ""
}

// DocumentName returns the file stem of a document path.
// It is used to name per-document index directories.
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TextRow is one visual line of positioned text on a page.
// Rows are ordered top to bottom; runs are ordered left to right.
type TextRow struct {
	// Y is the vertical position of the row in page units.
	Y float64

	// Runs are the text fragments on this row.
	Runs []TextRun
}

// TextRun is a fragment of text with its horizontal extent.
type TextRun struct {
	// X is the left edge of the run.
	X float64

	// Width is the horizontal extent of the run.
	Width float64

	// FontSize is the size of the font used for the run.
	FontSize float64

	// Text is the content of the run.
	Text string
}

// Right returns the right edge of the run.
func (r TextRun) Right() float64 {
	return r.X + r.Width
}
