package analysis

// Trending sizes: leading hashtags first, then leading words.
const (
	trendingHashtagCount = 5
	trendingWordCount    = 10
)

// Sentiment aggregates VADER compound scores over the tweets that entered
// text analysis.
type Sentiment struct {
	// Scored is the number of tweets the analyser scored.
	Scored int64 `json:"scored" yaml:"scored"`
	// Mean is the average compound score, in [-1, 1].
	Mean float64 `json:"mean" yaml:"mean"`
}

// Document is the persisted result of analysing one topic in one language.
// Counter objects keep ranked order, so field order here is the order the
// JSON file shows.
type Document struct {
	// LastID is the newest tweet id folded into the document. The next
	// run stops once it reaches this id.
	LastID int64 `json:"last_id" yaml:"last_id"`
	// TweetsCount is the total number of non-bot tweets analysed across
	// all runs.
	TweetsCount int64 `json:"tweets_count" yaml:"tweets_count"`
	// TweetsApplying is the subset of TweetsCount written in the
	// document's language, the population text analysis ran on.
	TweetsApplying int64 `json:"tweets_applying_for_analysis" yaml:"tweets_applying_for_analysis"`
	// Followers sums follower counts over distinct authors.
	Followers int64 `json:"followers" yaml:"followers"`

	Languages *CountMap `json:"languages" yaml:"languages"`
	Dates     *CountMap `json:"dates" yaml:"dates"`
	// Trending lists the leading hashtags followed by the leading words.
	Trending *CountMap `json:"trending" yaml:"trending"`
	Hashtags *CountMap `json:"hashtags" yaml:"hashtags"`
	Words    *CountMap `json:"words" yaml:"words"`
	// Users maps author screen names to tweet counts.
	Users *CountMap `json:"users" yaml:"users"`

	Sentiment *Sentiment `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
}
