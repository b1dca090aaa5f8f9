// Package pdf opens PDF files for extraction.
//
// Text and glyph positions come from github.com/ledongthuc/pdf. Embedded
// images are read with pdfcpu, which parses the file lazily the first time
// a page's images are requested.
package pdf
