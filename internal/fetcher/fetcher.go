// Package fetcher drives per-topic fetch passes: an explicit cursor state
// machine over the feed client that appends matching records to the tweet
// log, staging incremental catch-ups in a head file and folding it into the
// main log once the pass completes.
package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pabello/TwitterAnalyzer/internal/feed"
	"github.com/pabello/TwitterAnalyzer/internal/observability"
	"github.com/pabello/TwitterAnalyzer/internal/record"
	"github.com/pabello/TwitterAnalyzer/internal/tweetlog"
)

const (
	// DefaultRetryDelay is the fixed backoff before retrying a transient
	// feed failure.
	DefaultRetryDelay = 5 * time.Second

	// DefaultDecodeRetries bounds page decode retries per topic pass.
	DefaultDecodeRetries = 3

	tracerName = "twitteranalyzer/fetcher"
)

// Config tunes a Fetcher. Zero fields fall back to defaults.
type Config struct {
	RetryDelay    time.Duration
	DecodeRetries int

	// DryRun tallies pages and matches without writing or merging anything.
	DryRun bool
}

// Fetcher runs fetch passes against one feed client and one log store.
type Fetcher struct {
	client  feed.Client
	store   *tweetlog.Store
	cfg     Config
	log     *slog.Logger
	metrics *observability.Metrics
}

// New builds a Fetcher. Logger and metrics may be nil.
func New(client feed.Client, store *tweetlog.Store, cfg Config, log *slog.Logger, metrics *observability.Metrics) *Fetcher {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	if cfg.DecodeRetries <= 0 {
		cfg.DecodeRetries = DefaultDecodeRetries
	}

	return &Fetcher{
		client:  client,
		store:   store,
		cfg:     cfg,
		log:     log,
		metrics: metrics,
	}
}

// Run executes one full pass for the topic and reports its Summary. The
// topic doubles as the search keyword and must already be lowercased by the
// caller. Only authentication failures, context cancellation and log file
// I/O problems abort a pass; transient feed errors and undecodable pages are
// retried or contained per the failure policy.
func (f *Fetcher) Run(ctx context.Context, topic string) (Summary, error) {
	started := time.Now()
	sum := Summary{Topic: topic, RunID: uuid.NewString(), DryRun: f.cfg.DryRun}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "fetch.pass", trace.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("run_id", sum.RunID),
	))
	defer span.End()

	done := f.metrics.TrackPass(ctx, topic)
	defer done()

	cur, err := f.initCursor(topic)
	if err != nil {
		span.RecordError(err)

		return sum, err
	}

	f.logger().InfoContext(ctx, "starting fetch pass",
		"topic", topic,
		"run_id", sum.RunID,
		"state", cur.state.String(),
		"since_id", cur.sinceID,
		"max_id", cur.maxID,
		"dry_run", f.cfg.DryRun)

	decodeBudget := f.cfg.DecodeRetries

	for cur.state == StatePagingOlder || cur.state == StatePagingNewer {
		page, fetchErr := f.fetchPage(ctx, topic, cur, &decodeBudget, &sum)
		if fetchErr != nil {
			span.RecordError(fetchErr)

			return sum, fetchErr
		}

		if len(page) == 0 {
			if finishErr := f.finish(ctx, topic, &cur, &sum); finishErr != nil {
				span.RecordError(finishErr)

				return sum, finishErr
			}

			continue
		}

		if appendErr := f.consumePage(ctx, topic, &cur, page, &sum); appendErr != nil {
			span.RecordError(appendErr)

			return sum, appendErr
		}
	}

	sum.Duration = time.Since(started)
	f.metrics.ObserveFetchPass(ctx, topic, sum.Duration)

	span.SetAttributes(
		attribute.Int("pages", sum.Pages),
		attribute.Int("received", sum.Received),
		attribute.Int("matched", sum.Matched),
		attribute.Bool("merged", sum.Merged),
	)

	f.logger().InfoContext(ctx, "fetch pass finished",
		"topic", topic,
		"run_id", sum.RunID,
		"pages", sum.Pages,
		"received", sum.Received,
		"matched", sum.Matched,
		"merged", sum.Merged,
		"duration", sum.Duration)

	return sum, nil
}

// consumePage tallies one non-empty page, appends the keyword-matching
// records to the proper file and advances the upper cursor bound below the
// page's minimum id.
func (f *Fetcher) consumePage(ctx context.Context, topic string, cur *cursor, page []record.Record, sum *Summary) error {
	sum.Pages++
	sum.Received += len(page)

	matched := matchKeyword(page, topic)
	sum.Matched += len(matched)

	f.metrics.ObservePage(ctx, topic)
	f.metrics.ObserveRecords(ctx, topic, len(page), len(matched))

	if !f.cfg.DryRun && len(matched) > 0 {
		lines := make([]string, len(matched))
		for i, r := range matched {
			lines[i] = record.Encode(r)
		}

		var appendErr error
		if cur.state == StatePagingNewer {
			appendErr = f.store.AppendHead(topic, lines)
		} else {
			appendErr = f.store.Append(topic, lines)
		}

		if appendErr != nil {
			return appendErr
		}

		sum.Appended += len(lines)
	}

	cur.maxID = minID(page) - 1

	return nil
}

// fetchPage requests one page, absorbing the retryable failure classes:
// transient errors back off for the configured delay and retry without
// bound, undecodable pages retry until the per-pass budget runs out and then
// count as empty. Authentication failures and context cancellation abort.
func (f *Fetcher) fetchPage(ctx context.Context, topic string, cur cursor, decodeBudget *int, sum *Summary) ([]record.Record, error) {
	for {
		sum.Requests++

		page, err := f.client.Search(ctx, feed.Query{
			Keyword: topic,
			MaxID:   cur.maxID,
			SinceID: cur.sinceID,
		})
		if err == nil {
			return page, nil
		}

		switch {
		case errors.Is(err, feed.ErrAuthentication):
			return nil, err
		case errors.Is(err, feed.ErrPageDecode):
			f.metrics.ObserveRetry(ctx, topic, "decode")

			if *decodeBudget == 0 {
				f.logger().WarnContext(ctx, "page decode retries exhausted, treating page as empty",
					"topic", topic, "error", err)

				return nil, nil
			}

			*decodeBudget--

			f.logger().WarnContext(ctx, "retrying undecodable page",
				"topic", topic, "retries_left", *decodeBudget)
		case errors.Is(err, feed.ErrTransient):
			f.metrics.ObserveRetry(ctx, topic, "transient")
			f.logger().WarnContext(ctx, "transient feed failure, backing off",
				"topic", topic, "delay", f.cfg.RetryDelay, "error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.cfg.RetryDelay):
			}
		default:
			return nil, err
		}
	}
}

// finish applies the termination rules, checked in order, after an empty
// page, and moves the cursor to DONE.
func (f *Fetcher) finish(ctx context.Context, topic string, cur *cursor, sum *Summary) error {
	prior := cur.state
	cur.state = StateDone

	switch {
	case !cur.existingTopic && cur.maxID == 0 && cur.sinceID == 0:
		// No bounds were ever set: the feed holds no records for this topic
		// within its retention window.
		f.logger().InfoContext(ctx, "no records within feed retention window", "topic", topic)

		return nil
	case cur.sinceID != 0 && sum.Received == 0:
		// Nothing new since the last pass. A still-pending head file from an
		// interrupted run stays staged for a future pass.
		f.logger().InfoContext(ctx, "no new records since last pass", "topic", topic)

		return nil
	case cur.existingTopic && cur.sinceID == 0:
		// Recovery path: the newest stored id could not be read. Flush any
		// pending head file so its records reach the main log.
		return f.flushHead(ctx, topic, sum)
	default:
		if f.cfg.DryRun || prior != StatePagingNewer {
			return nil
		}

		if sum.Matched > 0 {
			if err := f.store.Merge(topic); err != nil {
				return err
			}

			sum.Merged = true

			return nil
		}

		if !cur.resumedHead {
			return f.store.DiscardHead(topic)
		}

		return nil
	}
}

func (f *Fetcher) flushHead(ctx context.Context, topic string, sum *Summary) error {
	hasHead, err := f.store.HasHead(topic)
	if err != nil {
		return err
	}

	if !hasHead || f.cfg.DryRun {
		return nil
	}

	f.logger().InfoContext(ctx, "flushing pending head file", "topic", topic)

	if err := f.store.Merge(topic); err != nil {
		return err
	}

	sum.Merged = true

	return nil
}

func matchKeyword(page []record.Record, keyword string) []record.Record {
	matched := make([]record.Record, 0, len(page))

	for _, r := range page {
		if strings.Contains(strings.ToLower(r.FullText), keyword) {
			matched = append(matched, r)
		}
	}

	return matched
}

func minID(page []record.Record) int64 {
	lowest := page[0].ID

	for _, r := range page[1:] {
		if r.ID < lowest {
			lowest = r.ID
		}
	}

	return lowest
}
