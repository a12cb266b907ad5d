package fetcher

import "time"

// Summary reports the outcome of one topic pass.
type Summary struct {
	Topic    string
	RunID    string
	Pages    int
	Requests int
	Received int
	Matched  int
	Appended int
	Merged   bool
	DryRun   bool
	Duration time.Duration
}

// MatchRate returns the share of received records that matched the keyword,
// in percent. A pass that received nothing has a rate of zero.
func (s Summary) MatchRate() float64 {
	if s.Received == 0 {
		return 0
	}

	return float64(s.Matched) / float64(s.Received) * 100
}
