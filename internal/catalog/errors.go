package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by callers that need an error value for a lookup
// that matched no event document. The loader itself reports "not found" as
// a nil result, not as an error.
var ErrNotFound = errors.New("event not found")

// ErrFetch indicates a document could not be retrieved from the content
// store (missing file, network failure, non-200 status).
type ErrFetch struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *ErrFetch) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *ErrFetch) Unwrap() error { return e.Err }

// ErrParse indicates a document is not well-formed XML.
type ErrParse struct {
	Path string
	Err  error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("XML parse error in %s: %v", e.Path, e.Err)
}

func (e *ErrParse) Unwrap() error { return e.Err }

// ErrMissingAttribute indicates a required attribute is absent or empty.
type ErrMissingAttribute struct {
	Path string
	Tag  string
	Attr string
}

func (e *ErrMissingAttribute) Error() string {
	return fmt.Sprintf("missing required attribute %q on <%s> in %s", e.Attr, e.Tag, e.Path)
}

// ErrNonNumericAttribute indicates a numeric attribute does not parse as a
// finite number.
type ErrNonNumericAttribute struct {
	Path  string
	Tag   string
	Attr  string
	Value string
}

func (e *ErrNonNumericAttribute) Error() string {
	return fmt.Sprintf("attribute %q must be numeric on <%s> in %s; got %q", e.Attr, e.Tag, e.Path, e.Value)
}

// ErrMissingRoot indicates the document root is not the expected element.
type ErrMissingRoot struct {
	Path string
	Want string
	Got  string
}

func (e *ErrMissingRoot) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("missing <%s> root in %s", e.Want, e.Path)
	}
	return fmt.Sprintf("root element must be <%s> in %s; got <%s>", e.Want, e.Path, e.Got)
}
