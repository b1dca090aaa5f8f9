// Package chunker provides a recursive character text splitter.
//
// Text is split on the first separator of a priority list that occurs in it.
// Pieces shorter than the chunk size are merged greedily into chunks with a
// sliding overlap; longer pieces are split again with the remaining
// separators. The empty separator splits into single characters.
// Lengths are counted in characters (runes), not bytes.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/logger"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// DefaultSeparators is the default separator priority list.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Verify interface compliance.
var _ driven.TextSplitter = (*Processor)(nil)

// Processor splits text into overlapping chunks.
// It implements the TextSplitter interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators sets the separator priority list.
// An empty list keeps the default.
func WithSeparators(separators []string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = append([]string(nil), separators...)
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: append([]string(nil), DefaultSeparators...),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the maximum chunk length in characters.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the overlap between consecutive chunks.
func (p *Processor) Overlap() int {
	return p.overlap
}

// SplitText splits text into chunks. Whitespace-only input yields no chunks.
func (p *Processor) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return p.split(text, p.separators)
}

func (p *Processor) split(text string, separators []string) []string {
	var chunks []string

	separator := separators[len(separators)-1]
	var remaining []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			remaining = separators[i+1:]
			break
		}
	}

	// Separators stay attached to the following piece, so pieces are
	// merged back without one.
	var good []string
	for _, s := range splitKeepSeparator(text, separator) {
		if length(s) < p.chunkSize {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			chunks = append(chunks, p.merge(good, "")...)
			good = nil
		}
		if len(remaining) == 0 {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			continue
		}
		chunks = append(chunks, p.split(s, remaining)...)
	}
	if len(good) > 0 {
		chunks = append(chunks, p.merge(good, "")...)
	}

	return chunks
}

// merge combines small pieces into chunks of at most chunkSize characters,
// carrying up to overlap characters of trailing pieces into the next chunk.
func (p *Processor) merge(splits []string, separator string) []string {
	sepLen := length(separator)

	var docs []string
	var current []string
	total := 0

	for _, d := range splits {
		n := length(d)
		if total+n+joinCost(current, sepLen) > p.chunkSize {
			if total > p.chunkSize {
				logger.Debug("chunker: created a chunk of size %d, which is longer than the specified %d", total, p.chunkSize)
			}
			if len(current) > 0 {
				if doc, ok := join(current, separator); ok {
					docs = append(docs, doc)
				}
				for total > p.overlap || (total+n+joinCost(current, sepLen) > p.chunkSize && total > 0) {
					drop := length(current[0])
					if len(current) > 1 {
						drop += sepLen
					}
					total -= drop
					current = current[1:]
				}
			}
		}
		current = append(current, d)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}

	if doc, ok := join(current, separator); ok {
		docs = append(docs, doc)
	}

	return docs
}

func joinCost(current []string, sepLen int) int {
	if len(current) > 0 {
		return sepLen
	}
	return 0
}

func join(pieces []string, separator string) (string, bool) {
	text := strings.TrimSpace(strings.Join(pieces, separator))
	return text, text != ""
}

// splitKeepSeparator splits text on separator, prefixing every piece after
// the first with the separator. The empty separator yields single characters.
// Empty pieces are dropped.
func splitKeepSeparator(text, separator string) []string {
	var pieces []string
	if separator == "" {
		pieces = make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, separator)
	pieces = make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = separator + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
