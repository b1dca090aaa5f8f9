package driven

// TextSplitter splits text into bounded, overlapping chunks.
type TextSplitter interface {
	// SplitText returns the chunks of text in order. Chunks are trimmed
	// and never empty.
	SplitText(text string) []string

	// ChunkSize returns the maximum chunk length in characters.
	ChunkSize() int
}
