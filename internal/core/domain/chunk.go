package domain

// ContentKind identifies which modality a chunk was derived from.
type ContentKind string

// Available content kinds.
const (
	// ContentText is page body text.
	ContentText ContentKind = "text"

	// ContentTable is a table surrogate.
	ContentTable ContentKind = "table"

	// ContentImage is an image surrogate.
	ContentImage ContentKind = "image"
)

// IsValid returns true if the content kind is recognised.
func (k ContentKind) IsValid() bool {
	switch k {
	case ContentText, ContentTable, ContentImage:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ContentKind) String() string {
	return string(k)
}

// ChunkSource records where a chunk came from.
type ChunkSource struct {
	// Document is the path of the source PDF.
	Document string

	// Page is the 0-based page number, or -1 for whole-document text.
	Page int

	// Kind is the modality of the source text.
	Kind ContentKind

	// Item is the table index or image position within the page.
	// It is 0 for body text.
	Item int
}

// IndexEntry is one embedded chunk stored in a vector index.
type IndexEntry struct {
	// ID is the unique identifier of the entry.
	ID string

	// Text is the chunk content.
	Text string

	// Vector is the embedding of Text.
	Vector []float32

	// Source describes the origin of the chunk.
	Source ChunkSource
}

// Clone returns a deep copy of the entry.
func (e IndexEntry) Clone() IndexEntry {
	c := e
	if e.Vector != nil {
		c.Vector = make([]float32, len(e.Vector))
		copy(c.Vector, e.Vector)
	}
	return c
}
