package classify

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// ImagePrompts are the templates used for image files.
type ImagePrompts struct {
	Describe string `yaml:"describe"`
	Filename string `yaml:"filename"`
	Folder   string `yaml:"folder"`
}

// DocumentPrompts are the templates used for text, PDF and DOCX files.
type DocumentPrompts struct {
	Summarize string `yaml:"summarize"`
	Filename  string `yaml:"filename"`
	Folder    string `yaml:"folder"`
}

// Prompts groups every template.
type Prompts struct {
	Image    ImagePrompts    `yaml:"image"`
	Document DocumentPrompts `yaml:"document"`
}

// DefaultPrompts returns the embedded templates.
func DefaultPrompts() (Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		return Prompts{}, fmt.Errorf("parse default prompts: %w", err)
	}
	return p, nil
}

// LoadPrompts returns the embedded templates overlaid with the non-empty
// templates from path. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts, err := DefaultPrompts()
	if err != nil {
		return Prompts{}, err
	}
	if strings.TrimSpace(path) == "" {
		return prompts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("read prompts %s: %w", path, err)
	}
	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	prompts.merge(override)
	return prompts, nil
}

func (p *Prompts) merge(o Prompts) {
	overlay(&p.Image.Describe, o.Image.Describe)
	overlay(&p.Image.Filename, o.Image.Filename)
	overlay(&p.Image.Folder, o.Image.Folder)
	overlay(&p.Document.Summarize, o.Document.Summarize)
	overlay(&p.Document.Filename, o.Document.Filename)
	overlay(&p.Document.Folder, o.Document.Folder)
}

func overlay(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// Render substitutes {{ name }} placeholders from vars. Unknown names render
// as an empty string.
func Render(template string, vars map[string]string) string {
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return vars[name]
	})
	return strings.TrimSpace(out)
}
