package textutil

import "strings"

// StopwordSet is an immutable lowercase word set.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from the provided words, lowercasing each.
func NewStopwordSet(words ...string) StopwordSet {
	set := StopwordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set.words[w] = struct{}{}
		}
	}
	return set
}

// Contains reports whether word is in the set.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of words in the set.
func (s StopwordSet) Len() int {
	return len(s.words)
}

// With returns a copy of the set extended with extra words.
func (s StopwordSet) With(extra ...string) StopwordSet {
	merged := NewStopwordSet(extra...)
	for w := range s.words {
		merged.words[w] = struct{}{}
	}
	return merged
}

// EnglishStopwords returns the standard English stop-word list used by the
// fallback keyword extractor.
func EnglishStopwords() StopwordSet {
	return NewStopwordSet(englishStopwords...)
}

var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what",
	"which", "who", "whom", "this", "that", "that'll", "these", "those", "am",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "a", "an", "the", "and", "but", "if",
	"or", "because", "as", "until", "while", "of", "at", "by", "for", "with",
	"about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in", "out", "on",
	"off", "over", "under", "again", "further", "then", "once", "here", "there",
	"when", "where", "why", "how", "all", "any", "both", "each", "few", "more",
	"most", "other", "some", "such", "no", "nor", "not", "only", "own", "same",
	"so", "than", "too", "very", "s", "t", "can", "will", "just", "don", "don't",
	"should", "should've", "now", "d", "ll", "m", "o", "re", "ve", "y", "ain",
	"aren", "aren't", "couldn", "couldn't", "didn", "didn't", "doesn", "doesn't",
	"hadn", "hadn't", "hasn", "hasn't", "haven", "haven't", "isn", "isn't", "ma",
	"mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan",
	"shan't", "shouldn", "shouldn't", "wasn", "wasn't", "weren", "weren't", "won",
	"won't", "wouldn", "wouldn't",
}
