// Package feed defines the search feed abstraction driven by the fetcher,
// together with the error taxonomy every implementation maps onto.
package feed

import (
	"context"
	"errors"

	"github.com/pabello/TwitterAnalyzer/internal/record"
)

var (
	// ErrTransient marks a failure worth retrying after a delay, such as an
	// upstream outage or an exhausted rate-limit window.
	ErrTransient = errors.New("transient feed failure")

	// ErrPageDecode marks a page whose body could not be decoded. Callers
	// retry a bounded number of times, then treat the page as empty.
	ErrPageDecode = errors.New("malformed feed page")

	// ErrAuthentication marks rejected or missing credentials. It is fatal to
	// the whole invocation.
	ErrAuthentication = errors.New("feed authentication failed")
)

// Query bounds one page request. MaxID is an inclusive upper bound and
// SinceID an exclusive lower bound on record ids; zero means unset.
type Query struct {
	Keyword string
	MaxID   int64
	SinceID int64
}

// Client fetches pages of records matching a keyword, newest first. A page
// holds at most the implementation's page size; an empty page means the
// bounded window is exhausted. Implementations block to honor upstream rate
// limits and respect context cancellation while doing so.
type Client interface {
	Search(ctx context.Context, q Query) ([]record.Record, error)
}
