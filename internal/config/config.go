package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output and state locations.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	DataDir   string `toml:"data_dir"`
	LogFile   string `toml:"log_file"`
}

// LLM contains the OpenAI-compatible endpoint used for classification.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	TextModel      string  `toml:"text_model"`
	VisionModel    string  `toml:"vision_model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxAttempts    int     `toml:"max_attempts"`
	MaxImageWidth  int     `toml:"max_image_width"`
	Temperature    float64 `toml:"temperature"`
}

// Naming controls how model output becomes folder and file names.
type Naming struct {
	MaxLength      int      `toml:"max_length"`
	MaxWords       int      `toml:"max_words"`
	ExtraStopwords []string `toml:"extra_stopwords"`
}

// Organize controls planning and commit behavior.
type Organize struct {
	Mode          string `toml:"mode"`
	LinkMode      string `toml:"link_mode"`
	Workers       int    `toml:"workers"`
	IncludeHidden bool   `toml:"include_hidden"`
	TextCharLimit int    `toml:"text_char_limit"`
	PDFPageLimit  int    `toml:"pdf_page_limit"`
	Journal       bool   `toml:"journal"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Silent bool   `toml:"silent"`
}

// Prompts points at an optional YAML prompt template override.
type Prompts struct {
	File string `toml:"file"`
}

// Config encapsulates all configuration values for fileorg.
//
// Configuration sections by subsystem:
//   - Paths: input/output directories, journal location and silent log file
//   - LLM: model endpoint and retry settings
//   - Naming: sanitizer limits and extra stop words
//   - Organize: mode, link strategy, worker count and extraction limits
//   - Logging: log format, level and silent mode
//   - Prompts: prompt template override
type Config struct {
	Paths    Paths    `toml:"paths"`
	LLM      LLM      `toml:"llm"`
	Naming   Naming   `toml:"naming"`
	Organize Organize `toml:"organize"`
	Logging  Logging  `toml:"logging"`
	Prompts  Prompts  `toml:"prompts"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return filepath.Join(xdg.ConfigHome, "fileorg", "config.toml"), nil
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fileorg.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory used by the journal.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.DataDir, err)
	}
	return nil
}

// JournalPath returns the location of the run journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.DataDir, "journal.db")
}

// RunLogPath returns the JSON log written for one organize run.
func (c *Config) RunLogPath(runID string) string {
	return filepath.Join(c.Paths.DataDir, "logs", runID+".jsonl")
}

// LogFilePath resolves the silent-mode log file. Relative names land inside
// the output directory, matching where the organized files are written.
func (c *Config) LogFilePath() string {
	name := strings.TrimSpace(c.Paths.LogFile)
	if name == "" {
		name = defaultLogFileName
	}
	if filepath.IsAbs(name) || strings.TrimSpace(c.Paths.OutputDir) == "" {
		return name
	}
	return filepath.Join(c.Paths.OutputDir, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	redacted := *c
	if redacted.LLM.APIKey != "" {
		redacted.LLM.APIKey = "********"
	}
	data, err := toml.Marshal(redacted)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

// LLMConfig contains the connection settings handed to the LLM client.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	TextModel      string
	VisionModel    string
	TimeoutSeconds int
	MaxAttempts    int
	MaxImageWidth  int
	Temperature    float64
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		TextModel:      strings.TrimSpace(c.LLM.TextModel),
		VisionModel:    strings.TrimSpace(c.LLM.VisionModel),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		MaxAttempts:    c.LLM.MaxAttempts,
		MaxImageWidth:  c.LLM.MaxImageWidth,
		Temperature:    c.LLM.Temperature,
	}
}
