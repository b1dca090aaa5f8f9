package domain

import "fmt"

// ImageRegion is an embedded image extracted from a page.
type ImageRegion struct {
	// Page is the 0-based page the image was found on.
	Page int

	// Position is the image's 0-based order on the page.
	Position int

	// Format is the encoded file type reported by the extractor (png, jpg, tif...).
	Format string

	// Data is the raw encoded image.
	Data []byte
}

// ImageSurrogate is the textual stand-in for one image.
// A failed decode or description leaves Description empty and records Err;
// the surrogate is still emitted so every image keeps its slot.
type ImageSurrogate struct {
	// Position is the image's 0-based order on the page.
	Position int

	// Description is the model-generated prose, or "" on failure.
	Description string

	// Err is the failure that emptied the description, if any.
	Err error
}

// OK returns true if the description was produced without error.
func (s ImageSurrogate) OK() bool {
	return s.Err == nil
}

// Tag returns the positional tag that prefixes the surrogate text.
func (s ImageSurrogate) Tag() string {
	return fmt.Sprintf("[Description Image #%d of this page]", s.Position)
}

// Text renders the surrogate as it is embedded.
func (s ImageSurrogate) Text() string {
	return s.Tag() + " " + s.Description
}
