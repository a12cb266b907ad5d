package analysis_test

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	"github.com/pabello/TwitterAnalyzer/internal/record"
	"github.com/pabello/TwitterAnalyzer/internal/tweetlog"
)

func tweet(id int64, name, lang, text string) record.Record {
	return record.Record{
		ID:            id,
		Date:          time.Date(2019, 10, 3, 18, 14, 20, 0, time.UTC),
		ScreenName:    name,
		UserLocation:  "warsaw",
		UserFollowers: 100,
		RetweetCount:  1,
		FavoriteCount: 2,
		Language:      lang,
		FullText:      text,
	}
}

func newTestAnalyzer(t *testing.T, cfg analysis.Config) (*analysis.Analyzer, *tweetlog.Store, *analysis.DocStore) {
	t.Helper()

	store := tweetlog.NewStore(t.TempDir())
	docs := analysis.NewDocStore(t.TempDir())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return analysis.New(store, docs, cfg, log, nil), store, docs
}

// seedLog writes records to the topic's main log, newest first.
func seedLog(t *testing.T, store *tweetlog.Store, topic string, recs ...record.Record) {
	t.Helper()

	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = record.Encode(r)
	}

	require.NoError(t, store.Append(topic, lines))
}

func TestAnalyzer_Run_ColdStartBuildsDocument(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{Sentiment: true})
	seedLog(t, store, "cats",
		tweet(3, "ada", "en", "I love cats #cats"),
		tweet(2, "grace", "en", "I love cats #cats"),
		tweet(1, "linus", "en", "I love cats #cats"),
	)

	res, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)

	assert.Equal(t, "cats", res.Topic)
	assert.Equal(t, "en", res.Language)
	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, 3, res.Analyzed)
	assert.Zero(t, res.Bots)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, int64(3), res.LastID)
	assert.Equal(t, int64(3), res.TweetsTotal)
	assert.True(t, res.Persisted)
	assert.Equal(t, docs.Path("cats", "en"), res.DocPath)

	doc, err := docs.Load("cats", "en")
	require.NoError(t, err)

	assert.Equal(t, int64(3), doc.LastID)
	assert.Equal(t, int64(3), doc.TweetsCount)
	assert.Equal(t, int64(3), doc.TweetsApplying)
	assert.Equal(t, int64(300), doc.Followers)
	assert.Equal(t, int64(3), doc.Languages.Get("en"))
	assert.Equal(t, int64(3), doc.Dates.Get("2019-10-03"))
	assert.Equal(t, int64(3), doc.Hashtags.Get("#cats"))
	assert.Equal(t, int64(3), doc.Words.Get("love"))
	assert.Equal(t, []string{"#cats", "love"}, keys(doc.Trending))
	assert.Equal(t, int64(1), doc.Users.Get("ada"))

	require.NotNil(t, doc.Sentiment)
	assert.Equal(t, int64(3), doc.Sentiment.Scored)
	assert.Positive(t, doc.Sentiment.Mean)
}

func TestAnalyzer_Run_StopsAtPersistedBoundary(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{})
	seedLog(t, store, "cats",
		tweet(3, "ada", "en", "I love cats #cats"),
		tweet(2, "grace", "en", "I love cats #cats"),
		tweet(1, "linus", "en", "I love cats #cats"),
	)

	require.NoError(t, docs.Save("cats", "en", &analysis.Document{LastID: 1, TweetsCount: 1}))

	res, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 2, res.Analyzed)
	assert.Equal(t, int64(3), res.LastID)
	assert.Equal(t, int64(3), res.TweetsTotal)
	assert.True(t, res.Persisted)

	doc, err := docs.Load("cats", "en")
	require.NoError(t, err)

	assert.Equal(t, int64(3), doc.LastID)
	assert.Equal(t, int64(3), doc.TweetsCount)
	// Only the two new records entered the counters.
	assert.Equal(t, int64(2), doc.Words.Get("love"))
}

func TestAnalyzer_Run_SecondRunIsNoOp(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{})
	seedLog(t, store, "cats",
		tweet(2, "ada", "en", "I love cats #cats"),
		tweet(1, "grace", "en", "I love cats #cats"),
	)

	_, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)

	res, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)

	assert.Zero(t, res.Scanned)
	assert.Zero(t, res.Analyzed)
	assert.False(t, res.Persisted)
	assert.Equal(t, int64(2), res.LastID)
	assert.Equal(t, int64(2), res.TweetsTotal)

	doc, err := docs.Load("cats", "en")
	require.NoError(t, err)

	assert.Equal(t, int64(2), doc.TweetsCount)
	assert.Equal(t, int64(2), doc.Words.Get("love"))
}

func TestAnalyzer_Run_SkipsBotAuthors(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{})
	seedLog(t, store, "cats",
		tweet(5, "weatherbot", "en", "I love cats #cats"),
		tweet(4, "BotNews42", "en", "I love cats #cats"),
		tweet(3, "iembot12", "en", "I love cats #cats"),
		tweet(2, "abbott", "en", "I love cats #cats"),
		tweet(1, "robotic", "en", "I love cats #cats"),
	)

	res, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)

	assert.Equal(t, 5, res.Scanned)
	assert.Equal(t, 3, res.Bots)
	assert.Equal(t, 2, res.Analyzed)
	assert.Equal(t, int64(5), res.LastID)

	doc, err := docs.Load("cats", "en")
	require.NoError(t, err)

	assert.Equal(t, int64(2), doc.TweetsCount)
	assert.Equal(t, int64(200), doc.Followers)
	assert.False(t, doc.Users.Has("weatherbot"))
	assert.True(t, doc.Users.Has("abbott"))
	assert.True(t, doc.Users.Has("robotic"))
}

func TestAnalyzer_Run_CountsFollowersOncePerAuthor(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{})
	seedLog(t, store, "cats",
		tweet(2, "ada", "en", "I love cats #cats"),
		tweet(1, "ada", "en", "I love cats #cats"),
	)

	_, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)

	doc, err := docs.Load("cats", "en")
	require.NoError(t, err)

	assert.Equal(t, int64(100), doc.Followers)
	assert.Equal(t, int64(2), doc.Users.Get("ada"))

	// A later run must not re-count an author the document already knows.
	require.NoError(t, store.AppendHead("cats", []string{record.Encode(tweet(5, "ada", "en", "more cats #cats"))}))
	require.NoError(t, store.Merge("cats"))

	res, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Analyzed)

	doc, err = docs.Load("cats", "en")
	require.NoError(t, err)

	assert.Equal(t, int64(100), doc.Followers)
	assert.Equal(t, int64(3), doc.Users.Get("ada"))
}

func TestAnalyzer_Run_SkipsUndecodableLines(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{})
	require.NoError(t, store.Append("cats", []string{
		record.Encode(tweet(3, "ada", "en", "I love cats #cats")),
		"not a record line",
		record.Encode(tweet(2, "grace", "en", "I love cats #cats")),
	}))

	res, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Analyzed)
	assert.Equal(t, int64(3), res.LastID)

	doc, err := docs.Load("cats", "en")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.TweetsCount)
}

func TestAnalyzer_Run_CountsOnlyConfiguredLanguage(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{Language: "en", Sentiment: true})
	seedLog(t, store, "cats",
		tweet(3, "ada", "en", "I love cats #cats"),
		tweet(2, "kasia", "pl", "kocham koty #koty"),
		tweet(1, "grace", "en", "great cats #cats"),
	)

	res, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Analyzed)

	doc, err := docs.Load("cats", "en")
	require.NoError(t, err)

	// Every record counts toward languages, dates and users; only the
	// configured language enters text analysis.
	assert.Equal(t, int64(3), doc.TweetsCount)
	assert.Equal(t, int64(2), doc.TweetsApplying)
	assert.Equal(t, int64(2), doc.Languages.Get("en"))
	assert.Equal(t, int64(1), doc.Languages.Get("pl"))
	assert.True(t, doc.Users.Has("kasia"))

	assert.False(t, doc.Hashtags.Has("#koty"))
	assert.False(t, doc.Words.Has("kocham"))
	assert.Equal(t, int64(2), doc.Hashtags.Get("#cats"))

	require.NotNil(t, doc.Sentiment)
	assert.Equal(t, int64(2), doc.Sentiment.Scored)
}

func TestAnalyzer_Run_RemovesStopWords(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{StopWords: []string{"the", "with"}})
	seedLog(t, store, "storm",
		tweet(1, "ada", "en", "the storms came with heavy rain"),
	)

	_, err := analyzer.Run(context.Background(), "storm")
	require.NoError(t, err)

	doc, err := docs.Load("storm", "en")
	require.NoError(t, err)

	assert.False(t, doc.Words.Has("the"))
	assert.False(t, doc.Words.Has("with"))
	assert.Equal(t, int64(1), doc.Words.Get("rain"))
	assert.Equal(t, int64(1), doc.Words.Get("heavy"))
	assert.NotContains(t, keys(doc.Trending), "the")
}

func TestAnalyzer_Run_SentimentDisabled(t *testing.T) {
	t.Parallel()

	analyzer, store, docs := newTestAnalyzer(t, analysis.Config{})
	seedLog(t, store, "cats",
		tweet(1, "ada", "en", "I love cats #cats"),
	)

	_, err := analyzer.Run(context.Background(), "cats")
	require.NoError(t, err)

	doc, err := docs.Load("cats", "en")
	require.NoError(t, err)

	assert.Nil(t, doc.Sentiment)
	assert.Equal(t, int64(1), doc.Words.Get("love"))
}

func TestAnalyzer_Run_MissingLogIsNoOp(t *testing.T) {
	t.Parallel()

	analyzer, _, docs := newTestAnalyzer(t, analysis.Config{})

	res, err := analyzer.Run(context.Background(), "ghost")
	require.NoError(t, err)

	assert.Zero(t, res.Scanned)
	assert.False(t, res.Persisted)

	_, err = docs.Load("ghost", "en")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
