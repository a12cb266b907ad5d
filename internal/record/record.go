// Package record defines the tweet record and its line serialization.
//
// A log line is a brace-delimited sequence of single-quoted key:value pairs:
//
//	{ 'id':'1181...', 'date':'2019-10-03 18:14:20', ..., 'full_text':'...' }
//
// Values are written unescaped, so a body that happens to contain the
// pair-separator-adjacent-quote sequence cannot be split unambiguously.
// Decode reports such lines with ErrFormat and callers skip them instead of
// aborting the stream. The format is kept as is for compatibility with logs
// written by earlier versions of the tool.
package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrFormat indicates a stored line that cannot be decoded into a record.
var ErrFormat = errors.New("malformed record line")

// DateLayout is the timestamp layout used inside log lines.
const DateLayout = "2006-01-02 15:04:05"

const (
	linePrefix = "{ '"
	lineSuffix = "' }"
	pairSep    = "', '"
	kvSep      = "':'"

	fieldCount = 9
)

// Field names in canonical write order.
var fieldOrder = [fieldCount]string{
	"id",
	"date",
	"screen_name",
	"user_location",
	"user_followers",
	"retweet_count",
	"favorite_count",
	"language",
	"full_text",
}

// Record is one tweet as persisted in a topic log. Immutable once written.
type Record struct {
	ID            int64
	Date          time.Time
	ScreenName    string
	UserLocation  string
	UserFollowers int64
	RetweetCount  int64
	FavoriteCount int64
	Language      string
	FullText      string
}

// DateBucket returns the date-only portion of the record timestamp,
// used as the aggregation key for per-day counts.
func (r Record) DateBucket() string {
	return r.Date.Format(time.DateOnly)
}

var newlines = strings.NewReplacer("\n", " ", "\r", " ")

// Encode renders the record as a single log line without a trailing newline.
// Newline characters inside free-text fields are replaced with spaces so one
// record always occupies exactly one line.
func Encode(r Record) string {
	var b strings.Builder

	b.WriteString(linePrefix)
	writePair(&b, "id", strconv.FormatInt(r.ID, 10), true)
	writePair(&b, "date", r.Date.Format(DateLayout), false)
	writePair(&b, "screen_name", r.ScreenName, false)
	writePair(&b, "user_location", newlines.Replace(r.UserLocation), false)
	writePair(&b, "user_followers", strconv.FormatInt(r.UserFollowers, 10), false)
	writePair(&b, "retweet_count", strconv.FormatInt(r.RetweetCount, 10), false)
	writePair(&b, "favorite_count", strconv.FormatInt(r.FavoriteCount, 10), false)
	writePair(&b, "language", r.Language, false)
	writePair(&b, "full_text", newlines.Replace(r.FullText), false)
	b.WriteString(lineSuffix)

	return b.String()
}

func writePair(b *strings.Builder, key, value string, first bool) {
	if !first {
		b.WriteString(pairSep)
	}

	b.WriteString(key)
	b.WriteString(kvSep)
	b.WriteString(value)
}

// Decode parses one log line back into a Record. Any structural problem —
// wrong delimiters, an ambiguous pair split caused by unescaped body text,
// a missing field or an unparsable number or timestamp — is reported as an
// error wrapping ErrFormat.
func Decode(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")

	if !strings.HasPrefix(line, linePrefix) || !strings.HasSuffix(line, lineSuffix) {
		return Record{}, fmt.Errorf("record decode: missing delimiters: %w", ErrFormat)
	}

	body := line[len(linePrefix) : len(line)-len(lineSuffix)]

	pairs := strings.Split(body, pairSep)
	if len(pairs) != fieldCount {
		return Record{}, fmt.Errorf("record decode: %d pairs, want %d: %w", len(pairs), fieldCount, ErrFormat)
	}

	fields := make(map[string]string, fieldCount)

	for _, pair := range pairs {
		kv := strings.Split(pair, kvSep)
		if len(kv) != 2 {
			return Record{}, fmt.Errorf("record decode: ambiguous pair %q: %w", pair, ErrFormat)
		}

		fields[kv[0]] = kv[1]
	}

	for _, name := range fieldOrder {
		if _, ok := fields[name]; !ok {
			return Record{}, fmt.Errorf("record decode: missing field %q: %w", name, ErrFormat)
		}
	}

	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("record decode: id: %w", ErrFormat)
	}

	date, err := time.Parse(DateLayout, fields["date"])
	if err != nil {
		return Record{}, fmt.Errorf("record decode: date: %w", ErrFormat)
	}

	followers, err := strconv.ParseInt(fields["user_followers"], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("record decode: user_followers: %w", ErrFormat)
	}

	retweets, err := strconv.ParseInt(fields["retweet_count"], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("record decode: retweet_count: %w", ErrFormat)
	}

	favorites, err := strconv.ParseInt(fields["favorite_count"], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("record decode: favorite_count: %w", ErrFormat)
	}

	return Record{
		ID:            id,
		Date:          date,
		ScreenName:    fields["screen_name"],
		UserLocation:  fields["user_location"],
		UserFollowers: followers,
		RetweetCount:  retweets,
		FavoriteCount: favorites,
		Language:      fields["language"],
		FullText:      fields["full_text"],
	}, nil
}

// DecodeID extracts only the record id from a line. It is cheaper than a full
// Decode and is used when initializing cursor bounds from log boundaries.
func DecodeID(line string) (int64, error) {
	r, err := Decode(line)
	if err != nil {
		return 0, err
	}

	return r.ID, nil
}
