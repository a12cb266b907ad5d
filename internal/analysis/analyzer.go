// Package analysis folds a topic's tweet log into cumulative per-language
// counters and a trending summary, persisted as one document per topic and
// language.
//
// Runs are strictly incremental: the log is streamed newest-first and the
// scan stops at the record already covered by the previous run, so records
// are counted exactly once across any number of runs.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pabello/TwitterAnalyzer/internal/observability"
	"github.com/pabello/TwitterAnalyzer/internal/record"
	"github.com/pabello/TwitterAnalyzer/internal/tweetlog"
)

// DefaultLanguage is the analysis language when none is configured.
const DefaultLanguage = "en"

// progressInterval is how many analysed tweets pass between progress logs.
const progressInterval = 10000

const tracerName = "twitteranalyzer/analysis"

// Config carries the analyser's tunables.
type Config struct {
	// Language selects the records whose bodies enter text analysis.
	// Empty means DefaultLanguage.
	Language string
	// StopWords are removed from the word counter before the trending
	// view is computed.
	StopWords []string
	// Sentiment enables VADER scoring of the analysed bodies.
	Sentiment bool
}

// Analyzer streams topic logs and maintains their analysis documents.
type Analyzer struct {
	store   *tweetlog.Store
	docs    *DocStore
	cfg     Config
	log     *slog.Logger
	metrics *observability.Metrics
}

// New creates an Analyzer reading logs from store and persisting documents
// through docs. log and metrics may be nil.
func New(store *tweetlog.Store, docs *DocStore, cfg Config, log *slog.Logger, metrics *observability.Metrics) *Analyzer {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	return &Analyzer{store: store, docs: docs, cfg: cfg, log: log, metrics: metrics}
}

func (a *Analyzer) logger() *slog.Logger {
	if a.log != nil {
		return a.log
	}

	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Result summarises one analysis run over one topic.
type Result struct {
	Topic    string
	Language string

	// Scanned counts log records visited before the continuation
	// boundary, bots included.
	Scanned int
	// Analyzed counts the new non-bot records folded into the document.
	Analyzed int
	// Bots counts records excluded for bot-pattern authors.
	Bots int
	// Skipped counts undecodable log lines.
	Skipped int

	// TweetsTotal is the document's cumulative tweet count after the run.
	TweetsTotal int64
	// LastID is the continuation boundary after the run.
	LastID int64
	// Persisted reports whether the document was written.
	Persisted bool
	// DocPath is the document location when Persisted.
	DocPath string

	Duration time.Duration
}

// Run analyses one topic: it loads the persisted document, folds in every
// log record newer than the document's continuation boundary, and persists
// the updated document. A run that finds no new records persists nothing.
// Undecodable lines are skipped and counted, never fatal.
func (a *Analyzer) Run(ctx context.Context, topic string) (Result, error) {
	started := time.Now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("language", a.cfg.Language),
	))
	defer span.End()

	res := Result{Topic: topic, Language: a.cfg.Language}

	st, err := a.loadState(topic)
	if err != nil {
		span.RecordError(err)

		return res, err
	}

	reader, err := a.store.Stream(topic)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No log for the topic yet; the empty scan leaves the document as is.
		a.logger().InfoContext(ctx, "no log for topic, nothing to analyze", "topic", topic)
	case err != nil:
		span.RecordError(err)

		return res, fmt.Errorf("topic %s: %w", topic, err)
	default:
		defer reader.Close()

		consumeErr := a.consume(ctx, reader, st, &res)
		if consumeErr != nil {
			span.RecordError(consumeErr)

			return res, fmt.Errorf("topic %s: %w", topic, consumeErr)
		}
	}

	err = a.finish(st, &res)
	if err != nil {
		span.RecordError(err)

		return res, err
	}

	res.Duration = time.Since(started)
	a.metrics.ObserveAnalysisRun(ctx, topic, a.cfg.Language, res.Analyzed, res.Skipped, res.Duration)

	span.SetAttributes(
		attribute.Int("analysis.scanned", res.Scanned),
		attribute.Int("analysis.analyzed", res.Analyzed),
		attribute.Int("analysis.skipped", res.Skipped),
		attribute.Bool("analysis.persisted", res.Persisted),
	)

	a.logger().InfoContext(ctx, "analysis run finished",
		"topic", topic,
		"language", a.cfg.Language,
		"analyzed", res.Analyzed,
		"bots", res.Bots,
		"skipped", res.Skipped,
		"tweets_total", res.TweetsTotal,
		"last_id", res.LastID,
		"persisted", res.Persisted,
		"duration", res.Duration,
	)

	return res, nil
}

// consume folds log records into the state until the continuation boundary
// or end of log.
func (a *Analyzer) consume(ctx context.Context, reader *tweetlog.Reader, st *State, res *Result) error {
	tok := newTokenizer(res.Topic)
	started := time.Now()

	var newLastID int64

	for reader.Scan() {
		rec, err := record.Decode(reader.Line())
		if err != nil {
			res.Skipped++

			continue
		}

		// The newest decodable record's id becomes the next boundary.
		if newLastID == 0 {
			newLastID = rec.ID
		}

		if st.LastID != 0 && rec.ID == st.LastID {
			break
		}

		res.Scanned++

		if isBotAuthor(rec.ScreenName) {
			res.Bots++

			continue
		}

		if res.Analyzed > 0 && res.Analyzed%progressInterval == 0 {
			a.logger().DebugContext(ctx, "analysis progress",
				"topic", res.Topic, "analyzed", res.Analyzed, "elapsed", time.Since(started))
		}

		a.fold(tok, st, rec)
		res.Analyzed++
	}

	err := reader.Err()
	if err != nil {
		return err
	}

	if newLastID != 0 {
		res.LastID = newLastID
	} else {
		res.LastID = st.LastID
	}

	return nil
}

// fold accounts one non-bot record into the state.
func (a *Analyzer) fold(tok *tokenizer, st *State, rec record.Record) {
	// Followers count once per distinct author.
	if !st.Users.Has(rec.ScreenName) {
		st.Followers += rec.UserFollowers
	}

	st.Users.Add(rec.ScreenName, 1)
	st.Dates.Add(rec.DateBucket(), 1)
	st.Languages.Add(rec.Language, 1)

	if rec.Language == a.cfg.Language {
		tok.consume(rec.FullText, st.Hashtags, st.Words)

		if a.cfg.Sentiment {
			st.Scored++
			st.CompoundSum += scoreCompound(rec.FullText)
		}
	}
}

// finish persists the updated document unless the run analysed nothing.
func (a *Analyzer) finish(st *State, res *Result) error {
	if res.Analyzed == 0 {
		res.TweetsTotal = st.Tweets
		res.LastID = st.LastID

		return nil
	}

	st.LastID = res.LastID
	st.Tweets += int64(res.Analyzed)

	for _, word := range a.cfg.StopWords {
		st.Words.Delete(word)
	}

	doc := st.Document(a.cfg.Language)

	err := a.docs.Save(res.Topic, a.cfg.Language, doc)
	if err != nil {
		return err
	}

	res.TweetsTotal = doc.TweetsCount
	res.Persisted = true
	res.DocPath = a.docs.Path(res.Topic, a.cfg.Language)

	return nil
}

// loadState restores the accumulator from the persisted document. A missing
// document means a cold start, not an error.
func (a *Analyzer) loadState(topic string) (*State, error) {
	doc, err := a.docs.Load(topic, a.cfg.Language)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewState(), nil
		}

		return nil, err
	}

	return StateFromDocument(doc), nil
}

// isBotAuthor reports whether a screen name looks automated: after trailing
// digits are stripped and case is folded, it contains "iembot" or starts or
// ends with "bot".
func isBotAuthor(screenName string) bool {
	name := strings.ToLower(strings.TrimRight(screenName, "0123456789"))

	if strings.Contains(name, "iembot") {
		return true
	}

	return strings.HasPrefix(name, "bot") || strings.HasSuffix(name, "bot")
}
