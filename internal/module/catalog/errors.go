package catalog

import "errors"

// Catalog errors.
var (
	ErrUpstreamUnavailable = errors.New("catalog upstream unavailable")
	ErrMangaNotFound       = errors.New("manga not found")
	ErrChapterNotFound     = errors.New("chapter not found")

	// ErrNotFound is returned by the upstream client for 404 responses.
	ErrNotFound = errors.New("upstream resource not found")
)
