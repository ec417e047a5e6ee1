package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fileorg/internal/logging"
	"fileorg/internal/metadata"
	"fileorg/internal/services"
)

// Classifier produces raw naming metadata for one file.
type Classifier interface {
	Classify(ctx context.Context, path string, kind metadata.FileKind) (metadata.RawMetadata, error)
}

// Model is the subset of the LLM client used for classification.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Describe(ctx context.Context, prompt, imagePath string) (string, error)
}

// TextExtractor reads the text of a document.
type TextExtractor interface {
	Text(path string, kind metadata.FileKind) (string, error)
}

// LLMClassifier asks a language model to describe, name and categorize files.
type LLMClassifier struct {
	model     Model
	extractor TextExtractor
	prompts   Prompts
	logger    *slog.Logger
}

// NewLLMClassifier builds a classifier. A nil logger discards output.
func NewLLMClassifier(model Model, extractor TextExtractor, prompts Prompts, logger *slog.Logger) *LLMClassifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LLMClassifier{
		model:     model,
		extractor: extractor,
		prompts:   prompts,
		logger:    logging.NewComponentLogger(logger, "classify"),
	}
}

// Classify implements Classifier. Files without a model route (other kinds,
// documents with no extractable text) return metadata with empty candidates
// so the record builder applies its defaults.
func (c *LLMClassifier) Classify(ctx context.Context, path string, kind metadata.FileKind) (metadata.RawMetadata, error) {
	raw := metadata.RawMetadata{SourcePath: path}
	ctx = services.WithSource(ctx, path)
	logger := logging.WithContext(ctx, c.logger)

	switch {
	case kind == metadata.KindImage:
		return c.classifyImage(ctx, raw)
	case kind.IsDocument():
		text, err := c.extractor.Text(path, kind)
		if err != nil {
			return raw, fmt.Errorf("extract %s: %w", kind, err)
		}
		if strings.TrimSpace(text) == "" {
			logger.Debug("no extractable text, using defaults", logging.String("kind", kind.String()))
			return raw, nil
		}
		return c.classifyDocument(ctx, raw, text)
	default:
		logger.Debug("no model route for kind, using defaults", logging.String("kind", kind.String()))
		return raw, nil
	}
}

func (c *LLMClassifier) classifyImage(ctx context.Context, raw metadata.RawMetadata) (metadata.RawMetadata, error) {
	description, err := c.model.Describe(ctx, Render(c.prompts.Image.Describe, nil), raw.SourcePath)
	if err != nil {
		return raw, fmt.Errorf("describe image: %w", err)
	}
	raw.Description = description
	vars := map[string]string{"description": description}

	if raw.FilenameCandidate, err = c.model.Complete(ctx, Render(c.prompts.Image.Filename, vars)); err != nil {
		return raw, fmt.Errorf("image filename: %w", err)
	}
	if raw.FolderCandidate, err = c.model.Complete(ctx, Render(c.prompts.Image.Folder, vars)); err != nil {
		return raw, fmt.Errorf("image folder: %w", err)
	}
	c.logResult(ctx, raw)
	return raw, nil
}

func (c *LLMClassifier) classifyDocument(ctx context.Context, raw metadata.RawMetadata, text string) (metadata.RawMetadata, error) {
	summary, err := c.model.Complete(ctx, Render(c.prompts.Document.Summarize, map[string]string{"text": text}))
	if err != nil {
		return raw, fmt.Errorf("summarize document: %w", err)
	}
	raw.Description = summary
	vars := map[string]string{"summary": summary, "description": summary}

	if raw.FilenameCandidate, err = c.model.Complete(ctx, Render(c.prompts.Document.Filename, vars)); err != nil {
		return raw, fmt.Errorf("document filename: %w", err)
	}
	if raw.FolderCandidate, err = c.model.Complete(ctx, Render(c.prompts.Document.Folder, vars)); err != nil {
		return raw, fmt.Errorf("document folder: %w", err)
	}
	c.logResult(ctx, raw)
	return raw, nil
}

func (c *LLMClassifier) logResult(ctx context.Context, raw metadata.RawMetadata) {
	logging.WithContext(ctx, c.logger).Debug("model suggestions",
		logging.String("folder_candidate", raw.FolderCandidate),
		logging.String("filename_candidate", raw.FilenameCandidate),
		logging.Int("description_chars", len(raw.Description)),
	)
}
