package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Default sanitizer limits.
const (
	DefaultMaxLength = 50
	DefaultMaxWords  = 5
)

// SanitizeOptions bounds the shape of a sanitized name.
type SanitizeOptions struct {
	MaxLength int
	MaxWords  int
}

// DefaultSanitizeOptions returns the default 50 character / 5 word limits.
func DefaultSanitizeOptions() SanitizeOptions {
	return SanitizeOptions{MaxLength: DefaultMaxLength, MaxWords: DefaultMaxWords}
}

func (o SanitizeOptions) withDefaults() SanitizeOptions {
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	if o.MaxWords <= 0 {
		o.MaxWords = DefaultMaxWords
	}
	return o
}

// markdownReplacer removes decoration models like to wrap answers in.
var markdownReplacer = strings.NewReplacer(
	"*", "",
	"`", "",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

var (
	labelPattern     = regexp.MustCompile(`(?i)^\s*(?:file\s*name|folder\s*name|category|summary|description|title|name)\s*:\s*`)
	extensionPattern = regexp.MustCompile(`\.[\p{L}\p{N}]{1,5}$`)
)

// nameStopwords are removed from every sanitized name: file-type nouns and
// filler words models tend to echo back from the prompt.
var nameStopwords = NewStopwordSet(
	"jpg", "jpeg", "png", "gif", "bmp", "webp", "txt", "pdf", "docx", "doc",
	"image", "images", "picture", "photo", "text", "document", "file",
	"this", "that", "these", "those", "here", "there", "please", "note", "notes",
	"additional", "folder", "name", "sure", "heres", "a", "an", "the", "and",
	"of", "in", "to", "for", "on", "with", "your", "answer", "should", "be",
	"only", "summary", "summarize", "category",
)

// IsNameStopword reports whether token is dropped by Sanitize.
func IsNameStopword(token string) bool {
	return nameStopwords.Contains(token)
}

// StripMarkdown removes markdown emphasis, code ticks, line breaks and a
// leading answer label such as "Filename:" from raw model output.
func StripMarkdown(raw string) string {
	cleaned := strings.TrimSpace(markdownReplacer.Replace(raw))
	cleaned = labelPattern.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// Sanitize turns free-form model output into a filesystem-safe name made of
// lowercase letter/digit tokens joined by underscores. It returns "" when
// nothing usable survives; callers substitute their own default.
// Sanitize(Sanitize(x)) == Sanitize(x) for every input.
func Sanitize(raw string, opts SanitizeOptions) string {
	opts = opts.withDefaults()

	name := StripMarkdown(raw)
	name = extensionPattern.ReplaceAllString(name, "")
	name = foldDiacritics(strings.ToLower(name))

	fields := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, opts.MaxWords)
	for _, field := range fields {
		if nameStopwords.Contains(field) {
			continue
		}
		tokens = append(tokens, field)
		if len(tokens) == opts.MaxWords {
			break
		}
	}
	if len(tokens) == 0 {
		return ""
	}

	joined := strings.Join(tokens, "_")
	if r := []rune(joined); len(r) > opts.MaxLength {
		joined = strings.Trim(string(r[:opts.MaxLength]), "_")
		// A cut can leave a fragment such as "a" that a second pass would drop.
		if idx := strings.LastIndexByte(joined, '_'); idx >= 0 {
			if nameStopwords.Contains(joined[idx+1:]) {
				joined = joined[:idx]
			}
		} else if nameStopwords.Contains(joined) {
			joined = ""
		}
	}
	return strings.Trim(joined, "_")
}

// IsPlaceholder reports whether a model candidate carries no information:
// empty, "untitled", "unknown" or "describes" (case-insensitive, after
// markdown stripping).
func IsPlaceholder(candidate string) bool {
	switch strings.ToLower(StripMarkdown(candidate)) {
	case "", "untitled", "unknown", "describes":
		return true
	}
	return false
}

func foldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}
