package fetcher

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pabello/TwitterAnalyzer/internal/record"
	"github.com/pabello/TwitterAnalyzer/internal/tweetlog"
)

// State is the explicit pagination state of one topic pass.
type State int

const (
	// StateInit derives cursor bounds from the log files on disk.
	StateInit State = iota

	// StatePagingOlder backfills a topic with no prior log, pulling from the
	// most recent record backward.
	StatePagingOlder

	// StatePagingNewer catches an existing log up, staging new records in
	// the head file.
	StatePagingNewer

	// StateDone terminates the pass.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StatePagingOlder:
		return "PAGING_OLDER"
	case StatePagingNewer:
		return "PAGING_NEWER"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// cursor carries the pagination bounds while a pass runs. maxID bounds the
// next page from above (inclusive, 0 = unset), sinceID from below (exclusive,
// 0 = unset).
type cursor struct {
	state         State
	maxID         int64
	sinceID       int64
	existingTopic bool
	resumedHead   bool
}

// initCursor inspects the topic's log files and picks the starting state:
// no log at all means a cold backfill, an existing log means an incremental
// pass bounded below by the newest stored id, and a stale head file from an
// interrupted run additionally bounds the pass from above so it resumes
// filling forward instead of starting over.
func (f *Fetcher) initCursor(topic string) (cursor, error) {
	cur := cursor{state: StateInit}

	exists, err := f.store.Exists(topic)
	if err != nil {
		return cur, err
	}

	if !exists {
		cur.state = StatePagingOlder

		return cur, nil
	}

	cur.existingTopic = true
	cur.state = StatePagingNewer

	newest, err := f.store.NewestID(topic)

	switch {
	case err == nil:
		cur.sinceID = newest
	case errors.Is(err, record.ErrFormat) || errors.Is(err, tweetlog.ErrNoRecords):
		// The newest line is unreadable. Leave sinceID unset; the pass then
		// finishes through the head-flush termination rule.
		f.logger().Warn("unreadable newest record, continuing without since bound",
			"topic", topic, "error", err)
	default:
		return cur, err
	}

	hasHead, err := f.store.HasHead(topic)
	if err != nil {
		return cur, err
	}

	if !hasHead {
		return cur, nil
	}

	oldest, err := f.store.OldestHeadID(topic)

	switch {
	case err == nil:
		cur.maxID = oldest - 1
		cur.resumedHead = true
	case errors.Is(err, tweetlog.ErrNoRecords):
		// An empty head file holds nothing worth resuming.
		if discardErr := f.store.DiscardHead(topic); discardErr != nil {
			return cur, discardErr
		}
	default:
		// A head file whose tail cannot be decoded cannot anchor resume
		// bounds; refetching from the top would duplicate its records, so
		// surface the problem instead of guessing.
		return cur, fmt.Errorf("stale head file for %q is unusable: %w", topic, err)
	}

	return cur, nil
}

func (f *Fetcher) logger() *slog.Logger {
	if f.log != nil {
		return f.log
	}

	return slog.Default()
}
