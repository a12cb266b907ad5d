package analysis

import (
	"sync"

	"github.com/jonreiter/govader"
)

var (
	vaderAnalyzer *govader.SentimentIntensityAnalyzer
	vaderOnce     sync.Once
)

// scoreCompound returns VADER's compound polarity for text, in [-1, 1].
// The analyzer loads its lexicon lazily, once per process.
func scoreCompound(text string) float64 {
	vaderOnce.Do(func() {
		vaderAnalyzer = govader.NewSentimentIntensityAnalyzer()
	})

	return vaderAnalyzer.PolarityScores(text).Compound
}
