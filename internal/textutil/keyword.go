package textutil

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercase word tokens. Apostrophes inside a word
// are kept so contractions match the stop-word list.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// ExtractKeyword picks the most frequent non-stop-word alphabetic token of a
// description. Ties go to the token seen first. When nothing survives
// filtering, fallback is returned.
func ExtractKeyword(description string, stop StopwordSet, fallback string) string {
	counts := make(map[string]int)
	var order []string
	for _, token := range Tokenize(description) {
		token = strings.Trim(token, "'")
		if token == "" || !isAlpha(token) || stop.Contains(token) {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	best, bestCount := "", 0
	for _, token := range order {
		if counts[token] > bestCount {
			best, bestCount = token, counts[token]
		}
	}
	if best == "" {
		return fallback
	}
	return best
}

func isAlpha(token string) bool {
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
