package proftile

import "errors"

// Parse errors, mapped to HTTP 400 by the server.
var (
	ErrNoUnit       = errors.New("timestamp has no unit")
	ErrInvalidValue = errors.New("invalid timestamp value")
	ErrInvalidUnit  = errors.New("invalid timestamp unit")
	ErrTooFewValues = errors.New("slug has too few values")
	ErrTooManyValues = errors.New("slug has too many values")
	ErrInvalidSlug  = errors.New("invalid slug")
)

// Structural contract violations; these indicate a programmer or
// data-producer bug rather than a malformed request.
var (
	ErrNotASlot         = errors.New("entry is not a slot")
	ErrNotASummary      = errors.New("entry is not a summary")
	ErrNotAPanel        = errors.New("entry is not a panel")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrTileSetMismatch  = errors.New("child data sources disagree on tile set")
	ErrFieldSchemaMismatch = errors.New("child data sources disagree on field schema")
)
