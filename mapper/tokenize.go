package mapper

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lower-cases text and splits it into word tokens. Punctuation and
// hyphens separate tokens; hyphenated keywords are matched by rejoining
// adjacent tokens with Join.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Join rebuilds a hyphenated keyword from two adjacent tokens.
func Join(first, second string) string {
	return first + "-" + second
}
