package cvextract

import (
	"errors"
	"fmt"
)

// ErrNoReadableText is returned when every strategy either failed or was
// rejected by its acceptance threshold. Extraction is deterministic for
// identical bytes (apart from OCR transients); callers should not retry
// the same document expecting a different outcome.
var ErrNoReadableText = errors.New("cvextract: no readable text")

// ErrDocumentTooLarge is returned when the input exceeds
// Config.MaxDocumentSize before any strategy runs.
var ErrDocumentTooLarge = errors.New("cvextract: document too large")

// NoTextError carries per-strategy diagnostics alongside ErrNoReadableText.
// Matched with errors.Is(err, ErrNoReadableText).
type NoTextError struct {
	Diagnostics Diagnostics
}

func (e *NoTextError) Error() string {
	return fmt.Sprintf("cvextract: no readable text after %d attempts", len(e.Diagnostics.Attempts))
}

func (e *NoTextError) Is(target error) bool {
	return target == ErrNoReadableText
}
