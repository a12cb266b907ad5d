package analysis

// State is the mutable accumulator behind a Document. Counters stay in
// first-seen order while a run mutates them; ranking happens once, when the
// state is rendered back into a Document.
type State struct {
	LastID    int64
	Tweets    int64
	Followers int64

	Languages *CountMap
	Dates     *CountMap
	Hashtags  *CountMap
	Words     *CountMap
	Users     *CountMap

	Scored      int64
	CompoundSum float64
}

// NewState creates an empty accumulator.
func NewState() *State {
	return &State{
		Languages: NewCountMap(),
		Dates:     NewCountMap(),
		Hashtags:  NewCountMap(),
		Words:     NewCountMap(),
		Users:     NewCountMap(),
	}
}

// StateFromDocument rebuilds the accumulator from a persisted document so a
// later run can extend it.
func StateFromDocument(doc *Document) *State {
	st := NewState()

	st.LastID = doc.LastID
	st.Tweets = doc.TweetsCount
	st.Followers = doc.Followers

	if doc.Languages != nil {
		st.Languages = doc.Languages
	}

	if doc.Dates != nil {
		st.Dates = doc.Dates
	}

	if doc.Hashtags != nil {
		st.Hashtags = doc.Hashtags
	}

	if doc.Words != nil {
		st.Words = doc.Words
	}

	if doc.Users != nil {
		st.Users = doc.Users
	}

	if doc.Sentiment != nil {
		st.Scored = doc.Sentiment.Scored
		st.CompoundSum = doc.Sentiment.Mean * float64(doc.Sentiment.Scored)
	}

	return st
}

// Document renders the accumulator into its persisted form for the given
// language: counters re-ranked, trending rebuilt from the ranked hashtags
// and words.
func (st *State) Document(language string) *Document {
	doc := &Document{
		LastID:         st.LastID,
		TweetsCount:    st.Tweets,
		TweetsApplying: st.Languages.Get(language),
		Followers:      st.Followers,
		Languages:      st.Languages.Ranked(),
		Dates:          st.Dates.Ranked(),
		Hashtags:       st.Hashtags.Ranked(),
		Words:          st.Words.Ranked(),
		Users:          st.Users.Ranked(),
	}

	doc.Trending = NewCountMap()
	for _, e := range doc.Hashtags.Top(trendingHashtagCount) {
		doc.Trending.Add(e.Key, e.Count)
	}

	for _, e := range doc.Words.Top(trendingWordCount) {
		doc.Trending.Add(e.Key, e.Count)
	}

	if st.Scored > 0 {
		doc.Sentiment = &Sentiment{
			Scored: st.Scored,
			Mean:   st.CompoundSum / float64(st.Scored),
		}
	}

	return doc
}
