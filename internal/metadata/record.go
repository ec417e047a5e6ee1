package metadata

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"fileorg/internal/services"
	"fileorg/internal/textutil"
)

// RawMetadata is the unprocessed classification result for one file.
type RawMetadata struct {
	SourcePath        string
	FolderCandidate   string
	FilenameCandidate string
	Description       string
}

// FileRecord is the sanitized, validated view of one input file. Records are
// values; nothing mutates them after Build returns.
type FileRecord struct {
	SourcePath  string
	Kind        FileKind
	Foldername  string
	Filename    string
	Description string
}

var namePattern = regexp.MustCompile(`^[\p{L}\p{N}]+(_[\p{L}\p{N}]+)*$`)

// Validate checks the record invariants.
func (r FileRecord) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourcePath, validation.Required),
		validation.Field(&r.Foldername, validation.Required, validation.Match(namePattern)),
		validation.Field(&r.Filename, validation.Required, validation.Match(namePattern), validation.RuneLength(1, 200)),
	)
}

// Builder turns RawMetadata into FileRecords.
type Builder struct {
	options   textutil.SanitizeOptions
	stopwords textutil.StopwordSet
}

// NewBuilder returns a Builder using the sanitizer limits and keyword
// stop words provided.
func NewBuilder(opts textutil.SanitizeOptions, stopwords textutil.StopwordSet) *Builder {
	if stopwords.Len() == 0 {
		stopwords = textutil.EnglishStopwords()
	}
	return &Builder{options: opts, stopwords: stopwords}
}

// Build sanitizes the candidates, applying fallbacks for placeholders:
//   - filename: the first three description words, else <kind>_<stem>
//   - folder: the description's dominant keyword, else the kind default
func (b *Builder) Build(raw RawMetadata) (FileRecord, error) {
	kind := KindFromPath(raw.SourcePath)
	description := strings.TrimSpace(raw.Description)

	record := FileRecord{
		SourcePath:  raw.SourcePath,
		Kind:        kind,
		Foldername:  b.folderName(raw.FolderCandidate, description, kind),
		Filename:    b.fileName(raw.FilenameCandidate, description, raw.SourcePath, kind),
		Description: description,
	}
	if err := record.Validate(); err != nil {
		return FileRecord{}, services.Wrap(services.ErrValidation, "metadata", "build record",
			fmt.Sprintf("invalid record for %s", filepath.Base(raw.SourcePath)), err)
	}
	return record, nil
}

func (b *Builder) fileName(candidate, description, source string, kind FileKind) string {
	if textutil.IsPlaceholder(candidate) {
		candidate = firstWords(description, 3)
	}
	name := textutil.Sanitize(candidate, b.options)
	if name != "" && name != "untitled" {
		return name
	}
	return b.fallbackFileName(source, kind)
}

func (b *Builder) folderName(candidate, description string, kind FileKind) string {
	if textutil.IsPlaceholder(candidate) {
		candidate = textutil.ExtractKeyword(description, b.stopwords, kind.DefaultFolder())
	}
	if name := textutil.Sanitize(candidate, b.options); name != "" {
		return name
	}
	return kind.DefaultFolder()
}

// fallbackFileName builds <prefix>_<stem>, keeping the original stem
// recognizable even when every word of it is a stop word.
func (b *Builder) fallbackFileName(source string, kind FileKind) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	token := textutil.Sanitize(stem, textutil.SanitizeOptions{MaxLength: 200, MaxWords: 8})
	if token == "" {
		token = alnumToken(stem)
	}
	if token == "" {
		token = "untitled"
	}
	name := kind.NamePrefix() + "_" + token
	if r := []rune(name); len(r) > 200 {
		name = strings.TrimRight(string(r[:200]), "_")
	}
	return name
}

func firstWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func alnumToken(value string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
