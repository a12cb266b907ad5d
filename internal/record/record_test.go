package record_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pabello/TwitterAnalyzer/internal/record"
)

func sample() record.Record {
	return record.Record{
		ID:            1181234567890123456,
		Date:          time.Date(2019, 10, 3, 18, 14, 20, 0, time.UTC),
		ScreenName:    "gopher",
		UserLocation:  "Poznan, Poland",
		UserFollowers: 1234,
		RetweetCount:  2,
		FavoriteCount: 15,
		Language:      "en",
		FullText:      "I love cats #cats",
	}
}

func TestEncode_SingleLine(t *testing.T) {
	t.Parallel()

	r := sample()
	r.FullText = "line one\nline two\r\nthree"
	r.UserLocation = "here\nthere"

	line := record.Encode(r)

	assert.NotContains(t, line, "\n")
	assert.NotContains(t, line, "\r")
	assert.Contains(t, line, "'full_text':'line one line two  three'")
}

func TestEncode_FieldOrder(t *testing.T) {
	t.Parallel()

	line := record.Encode(sample())

	assert.Equal(t,
		"{ 'id':'1181234567890123456', 'date':'2019-10-03 18:14:20', "+
			"'screen_name':'gopher', 'user_location':'Poznan, Poland', "+
			"'user_followers':'1234', 'retweet_count':'2', 'favorite_count':'15', "+
			"'language':'en', 'full_text':'I love cats #cats' }",
		line)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	want := sample()

	got, err := record.Decode(record.Encode(want))
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestDecode_TrailingNewline(t *testing.T) {
	t.Parallel()

	got, err := record.Decode(record.Encode(sample()) + "\n")
	require.NoError(t, err)

	assert.Equal(t, sample(), got)
}

func TestDecode_AmbiguousPairSeparatorInBody(t *testing.T) {
	t.Parallel()

	r := sample()
	r.FullText = "a quote: 'so it goes', 'he said'"

	_, err := record.Decode(record.Encode(r))

	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrFormat)
}

func TestDecode_AmbiguousKeyValueSeparatorInBody(t *testing.T) {
	t.Parallel()

	r := sample()
	r.FullText = "weird':'token"

	_, err := record.Decode(record.Encode(r))

	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrFormat)
}

func TestDecode_MissingDelimiters(t *testing.T) {
	t.Parallel()

	_, err := record.Decode("'id':'1', 'date':'2019-10-03 18:14:20'")

	assert.ErrorIs(t, err, record.ErrFormat)
}

func TestDecode_UnparsableNumber(t *testing.T) {
	t.Parallel()

	bad := strings.Replace(record.Encode(sample()),
		"'id':'1181234567890123456'", "'id':'notanumber'", 1)

	_, err := record.Decode(bad)

	assert.ErrorIs(t, err, record.ErrFormat)
}

func TestDecode_EmptyLine(t *testing.T) {
	t.Parallel()

	_, err := record.Decode("")

	assert.ErrorIs(t, err, record.ErrFormat)
}

func TestDecodeID(t *testing.T) {
	t.Parallel()

	id, err := record.DecodeID(record.Encode(sample()))
	require.NoError(t, err)

	assert.Equal(t, int64(1181234567890123456), id)
}

func TestDateBucket(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2019-10-03", sample().DateBucket())
}
