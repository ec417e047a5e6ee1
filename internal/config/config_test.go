package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"fileorg/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("FILEORG_LLM_API_KEY", "env-key")
	t.Setenv("OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, path)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Naming.MaxLength != 50 || cfg.Naming.MaxWords != 5 {
		t.Fatalf("unexpected naming defaults: %+v", cfg.Naming)
	}
	if cfg.Organize.Mode != config.ModeContent {
		t.Fatalf("expected content mode, got %q", cfg.Organize.Mode)
	}
	if cfg.Organize.LinkMode != config.LinkAuto {
		t.Fatalf("expected auto link mode, got %q", cfg.Organize.LinkMode)
	}
	if cfg.Organize.TextCharLimit != 3000 || cfg.Organize.PDFPageLimit != 3 {
		t.Fatalf("unexpected extraction limits: %+v", cfg.Organize)
	}
	if cfg.Paths.LogFile != "operation_log.txt" {
		t.Fatalf("unexpected log file: %q", cfg.Paths.LogFile)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("expected absolute data dir, got %q", cfg.Paths.DataDir)
	}
}

func TestLoadOverridesFromTOML(t *testing.T) {
	t.Setenv("FILEORG_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := config.Default()
	cfg.Paths.InputDir = "~/inbox"
	cfg.Paths.OutputDir = "~/sorted"
	cfg.Organize.Mode = "DATE"
	cfg.Organize.LinkMode = " Symlink "
	cfg.Organize.Workers = 4
	cfg.Naming.ExtraStopwords = []string{" Scan ", ""}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if loaded.Paths.InputDir != filepath.Join(home, "inbox") {
		t.Fatalf("unexpected input dir: %q", loaded.Paths.InputDir)
	}
	if loaded.Paths.OutputDir != filepath.Join(home, "sorted") {
		t.Fatalf("unexpected output dir: %q", loaded.Paths.OutputDir)
	}
	if loaded.Organize.Mode != config.ModeDate {
		t.Fatalf("expected date mode, got %q", loaded.Organize.Mode)
	}
	if loaded.Organize.LinkMode != config.LinkSymlink {
		t.Fatalf("expected symlink mode, got %q", loaded.Organize.LinkMode)
	}
	if loaded.Organize.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", loaded.Organize.Workers)
	}
	if len(loaded.Naming.ExtraStopwords) != 1 || loaded.Naming.ExtraStopwords[0] != "scan" {
		t.Fatalf("unexpected extra stopwords: %v", loaded.Naming.ExtraStopwords)
	}
	if loaded.LLM.APIKey != "openai-key" {
		t.Fatalf("expected OPENAI_API_KEY fallback, got %q", loaded.LLM.APIKey)
	}
	if got := loaded.LogFilePath(); got != filepath.Join(home, "sorted", "operation_log.txt") {
		t.Fatalf("unexpected log file path: %q", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"mode", func(c *config.Config) { c.Organize.Mode = "size" }, "organize"},
		{"link mode", func(c *config.Config) { c.Organize.LinkMode = "move" }, "organize"},
		{"workers", func(c *config.Config) { c.Organize.Workers = -1 }, "organize"},
		{"max length", func(c *config.Config) { c.Naming.MaxLength = -5 }, "naming"},
		{"base url", func(c *config.Config) { c.LLM.BaseURL = "not a url" }, "llm"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging"},
		{"same dirs", func(c *config.Config) {
			c.Paths.InputDir = "/data/in"
			c.Paths.OutputDir = "/data/in"
		}, "paths"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.HasPrefix(err.Error(), tt.want) {
				t.Fatalf("expected %q error, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestCreateSampleParsesCleanly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("load sample: exists=%v err=%v", exists, err)
	}
}

func TestEncodeRedactsAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "secret"
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("api key leaked: %s", out)
	}
	if cfg.LLM.APIKey != "secret" {
		t.Fatal("Encode mutated the receiver")
	}
}

func TestApplyOverrides(t *testing.T) {
	input := filepath.Join(t.TempDir(), "inbox")
	cfg := config.Default()
	silent := true
	if err := cfg.Apply(config.Overrides{
		InputDir: input,
		Mode:     " DATE ",
		LinkMode: "copy",
		Silent:   &silent,
		Workers:  4,
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Paths.InputDir != input {
		t.Fatalf("expected input %q, got %q", input, cfg.Paths.InputDir)
	}
	if want := filepath.Join(filepath.Dir(input), "organized_folder"); cfg.Paths.OutputDir != want {
		t.Fatalf("expected default output %q, got %q", want, cfg.Paths.OutputDir)
	}
	if cfg.Organize.Mode != config.ModeDate || cfg.Organize.LinkMode != config.LinkCopy || cfg.Organize.Workers != 4 {
		t.Fatalf("unexpected organize section: %+v", cfg.Organize)
	}
	if !cfg.Logging.Silent {
		t.Fatal("expected silent mode")
	}
	if want := filepath.Join(cfg.Paths.OutputDir, "operation_log.txt"); cfg.LogFilePath() != want {
		t.Fatalf("expected log file %q, got %q", want, cfg.LogFilePath())
	}
}

func TestApplyRejectsUnknownMode(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Apply(config.Overrides{InputDir: t.TempDir(), Mode: "size"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestApplyRejectsSameInputAndOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	if err := cfg.Apply(config.Overrides{InputDir: dir, OutputDir: dir}); err == nil {
		t.Fatal("expected error when output equals input")
	}
}
