package lineage

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnsupportedAsset marks a trigger payload with no recognizable
// provenance field. The invocation aborts before any lookup is made.
var ErrUnsupportedAsset = errors.New("entity carries no provenance field")

// ErrHopLimit marks a chain longer than the configured safety valve.
var ErrHopLimit = errors.New("lineage hop limit exceeded")

// LookupError is a failed provider lookup. Status carries the provider's
// numeric status code; the traversal engine matches only on that, never on
// the wrapped error text.
type LookupError struct {
	Kind    Kind
	Project string
	Name    string
	Status  int
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup %s/%s failed (status %d): %v", e.Kind, e.Project, e.Name, e.Status, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// PermissionDenied reports whether the provider refused the read. This is
// the single lookup failure traversal tolerates, and only for images.
func (e *LookupError) PermissionDenied() bool {
	return e.Status == http.StatusForbidden
}

// ParseError is a resource path that does not match the expected grammar.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed resource path %q: %s", e.Path, e.Reason)
}
