package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fileorg/internal/metadata"
)

type fakeModel struct {
	describePrompts []string
	completePrompts []string
	describeReply   string
	replies         []string
	err             error
}

func (f *fakeModel) Describe(_ context.Context, prompt, _ string) (string, error) {
	f.describePrompts = append(f.describePrompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.describeReply, nil
}

func (f *fakeModel) Complete(_ context.Context, prompt string) (string, error) {
	f.completePrompts = append(f.completePrompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Text(string, metadata.FileKind) (string, error) {
	return f.text, f.err
}

func mustPrompts(t *testing.T) Prompts {
	t.Helper()
	p, err := DefaultPrompts()
	if err != nil {
		t.Fatalf("DefaultPrompts: %v", err)
	}
	return p
}

func TestClassifyImageChainsDescription(t *testing.T) {
	model := &fakeModel{
		describeReply: "A tabby cat asleep on a windowsill.",
		replies:       []string{"Filename: sleeping_tabby_cat", "Category: pets"},
	}
	c := NewLLMClassifier(model, fakeExtractor{}, mustPrompts(t), nil)

	raw, err := c.Classify(context.Background(), "/in/IMG_0001.jpg", metadata.KindImage)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if raw.SourcePath != "/in/IMG_0001.jpg" || raw.Description != "A tabby cat asleep on a windowsill." {
		t.Fatalf("unexpected raw metadata: %#v", raw)
	}
	if raw.FilenameCandidate != "Filename: sleeping_tabby_cat" || raw.FolderCandidate != "Category: pets" {
		t.Fatalf("unexpected candidates: %#v", raw)
	}
	if len(model.describePrompts) != 1 || len(model.completePrompts) != 2 {
		t.Fatalf("expected 1 describe and 2 completions, got %d/%d", len(model.describePrompts), len(model.completePrompts))
	}
	for _, prompt := range model.completePrompts {
		if !strings.Contains(prompt, "A tabby cat asleep on a windowsill.") {
			t.Fatalf("prompt missing description: %q", prompt)
		}
		if strings.Contains(prompt, "{{") {
			t.Fatalf("prompt has unrendered placeholder: %q", prompt)
		}
	}
}

func TestClassifyDocumentSummarizesFirst(t *testing.T) {
	model := &fakeModel{replies: []string{"Notes on string theory basics.", "string_theory_notes", "physics"}}
	c := NewLLMClassifier(model, fakeExtractor{text: "Strings vibrate in ten dimensions."}, mustPrompts(t), nil)

	raw, err := c.Classify(context.Background(), "/in/notes.pdf", metadata.KindPDF)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if raw.Description != "Notes on string theory basics." || raw.FilenameCandidate != "string_theory_notes" || raw.FolderCandidate != "physics" {
		t.Fatalf("unexpected raw metadata: %#v", raw)
	}
	if len(model.describePrompts) != 0 {
		t.Fatal("documents must not use the vision model")
	}
	if !strings.Contains(model.completePrompts[0], "Strings vibrate in ten dimensions.") {
		t.Fatalf("summary prompt missing text: %q", model.completePrompts[0])
	}
	if !strings.Contains(model.completePrompts[1], "Notes on string theory basics.") {
		t.Fatalf("filename prompt missing summary: %q", model.completePrompts[1])
	}
}

func TestClassifyEmptyDocumentSkipsModel(t *testing.T) {
	model := &fakeModel{}
	c := NewLLMClassifier(model, fakeExtractor{text: "  \n"}, mustPrompts(t), nil)

	raw, err := c.Classify(context.Background(), "/in/scan.pdf", metadata.KindPDF)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if raw.FolderCandidate != "" || raw.FilenameCandidate != "" || raw.Description != "" {
		t.Fatalf("expected empty candidates, got %#v", raw)
	}
	if len(model.completePrompts) != 0 {
		t.Fatal("model should not be called")
	}
}

func TestClassifyOtherKindSkipsModel(t *testing.T) {
	model := &fakeModel{}
	c := NewLLMClassifier(model, fakeExtractor{}, mustPrompts(t), nil)

	raw, err := c.Classify(context.Background(), "/in/archive.zip", metadata.KindOther)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if raw.SourcePath != "/in/archive.zip" || len(model.completePrompts)+len(model.describePrompts) != 0 {
		t.Fatalf("unexpected result %#v", raw)
	}
}

func TestClassifyPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewLLMClassifier(&fakeModel{err: boom}, fakeExtractor{}, mustPrompts(t), nil)
	if _, err := c.Classify(context.Background(), "/in/a.png", metadata.KindImage); !errors.Is(err, boom) {
		t.Fatalf("expected model error, got %v", err)
	}

	c = NewLLMClassifier(&fakeModel{}, fakeExtractor{err: boom}, mustPrompts(t), nil)
	if _, err := c.Classify(context.Background(), "/in/a.docx", metadata.KindDocx); !errors.Is(err, boom) {
		t.Fatalf("expected extractor error, got %v", err)
	}
}

func TestLoadPromptsOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	override := "image:\n  folder: \"Pick a folder for: {{ description }}\"\n"
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	prompts, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	defaults := mustPrompts(t)
	if prompts.Image.Folder != "Pick a folder for: {{ description }}" {
		t.Fatalf("override not applied: %q", prompts.Image.Folder)
	}
	if prompts.Image.Filename != defaults.Image.Filename || prompts.Document.Summarize != defaults.Document.Summarize {
		t.Fatal("untouched templates should keep their defaults")
	}
}

func TestLoadPromptsErrors(t *testing.T) {
	if _, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("image: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrompts(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRender(t *testing.T) {
	cases := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{"spaced", "Summary: {{ summary }}", map[string]string{"summary": "ok"}, "Summary: ok"},
		{"tight", "{{text}}!", map[string]string{"text": "hi"}, "hi!"},
		{"unknown", "x {{ missing }} y", nil, "x  y"},
		{"trimmed", "\n  body  \n", nil, "body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.template, tc.vars); got != tc.want {
				t.Fatalf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}
