package analysis

import "strings"

// punctStripper normalizes curly single quotes to apostrophes and deletes
// the punctuation set tweets decorate words with. Curly double quotes are
// deleted directly, which is equivalent to normalizing them to straight
// quotes first. Apostrophes survive so contractions stay whole.
var punctStripper = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", "",
	"”", "",
	`"`, "",
	",", "",
	".", "",
	"!", "",
	"?", "",
	";", "",
	"*", "",
	"(", "",
	")", "",
	"-", "",
)

// tokenizer splits tweet bodies into hashtag and word counts for one topic.
type tokenizer struct {
	keyword string
}

func newTokenizer(keyword string) *tokenizer {
	return &tokenizer{keyword: strings.ToLower(keyword)}
}

// consume tokenizes text and folds the surviving tokens into the hashtag
// and word counters.
//
// A token is dropped when it is a single character, contains "http", or its
// lowered form occurs inside the topic keyword. Tokens starting with '#'
// count as hashtags, lowercased. The rest count as words when longer than
// two characters, or exactly two fully-uppercase characters; a word keeps
// its case only when everything before its last character is uppercase
// already, which preserves acronyms and their plural forms.
func (t *tokenizer) consume(text string, hashtags, words *CountMap) {
	for _, token := range strings.Fields(punctStripper.Replace(text)) {
		runes := []rune(token)
		if len(runes) <= 1 {
			continue
		}

		if strings.Contains(token, "http") {
			continue
		}

		if strings.Contains(t.keyword, strings.ToLower(token)) {
			continue
		}

		if runes[0] == '#' {
			hashtags.Add(strings.ToLower(token), 1)

			continue
		}

		if len(runes) == 2 && token != strings.ToUpper(token) {
			continue
		}

		head := string(runes[:len(runes)-1])
		if head != strings.ToUpper(head) {
			token = strings.ToLower(token)
		}

		words.Add(token, 1)
	}
}
