package pkg

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrEmptyServicePrefix is returned when a page carries no service prefix
	ErrEmptyServicePrefix = errors.New("empty service prefix")

	// ErrNoActionsTable is returned when a page has no actions table
	ErrNoActionsTable = errors.New("no actions table found")

	// ErrUnknownAccessLevel is returned for access level labels outside the known set
	ErrUnknownAccessLevel = errors.New("unknown access level")

	// ErrFetch is matched by every FetchError
	ErrFetch = errors.New("fetch failed")
)

// FetchError represents a failure to retrieve a documentation page.
// It is the only error kind that aborts a generation run.
type FetchError struct {
	Slug       string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s (%s): HTTP %d", e.Slug, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s (%s): %v", e.Slug, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// PageError wraps a failure confined to a single page. The page is skipped and the run goes on.
type PageError struct {
	Slug string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %v", e.Slug, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
