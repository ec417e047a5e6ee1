package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeNaming()
	c.normalizeOrganize()
	c.normalizeLogging()
	return c.normalizePrompts()
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(strings.TrimSpace(c.Paths.InputDir)); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir()
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	c.Paths.LogFile = strings.TrimSpace(c.Paths.LogFile)
	if c.Paths.LogFile == "" {
		c.Paths.LogFile = defaultLogFileName
	}
	if strings.HasPrefix(c.Paths.LogFile, "~") {
		if c.Paths.LogFile, err = expandPath(c.Paths.LogFile); err != nil {
			return fmt.Errorf("paths.log_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, key := range []string{"FILEORG_LLM_API_KEY", "OPENAI_API_KEY"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		if value, ok := os.LookupEnv("FILEORG_LLM_BASE_URL"); ok && strings.TrimSpace(value) != "" {
			c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		} else {
			c.LLM.BaseURL = defaultLLMBaseURL
		}
	}
	c.LLM.TextModel = strings.TrimSpace(c.LLM.TextModel)
	if c.LLM.TextModel == "" {
		c.LLM.TextModel = defaultLLMTextModel
	}
	c.LLM.VisionModel = strings.TrimSpace(c.LLM.VisionModel)
	if c.LLM.VisionModel == "" {
		c.LLM.VisionModel = defaultLLMVisionModel
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxAttempts == 0 {
		c.LLM.MaxAttempts = defaultLLMMaxAttempts
	}
	if c.LLM.MaxImageWidth == 0 {
		c.LLM.MaxImageWidth = defaultLLMMaxImageWidth
	}
}

func (c *Config) normalizeNaming() {
	if c.Naming.MaxLength == 0 {
		c.Naming.MaxLength = defaultNamingMaxLength
	}
	if c.Naming.MaxWords == 0 {
		c.Naming.MaxWords = defaultNamingMaxWords
	}
	words := make([]string, 0, len(c.Naming.ExtraStopwords))
	for _, word := range c.Naming.ExtraStopwords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			words = append(words, word)
		}
	}
	c.Naming.ExtraStopwords = words
}

func (c *Config) normalizeOrganize() {
	c.Organize.Mode = strings.ToLower(strings.TrimSpace(c.Organize.Mode))
	if c.Organize.Mode == "" {
		c.Organize.Mode = defaultOrganizeMode
	}
	c.Organize.LinkMode = strings.ToLower(strings.TrimSpace(c.Organize.LinkMode))
	if c.Organize.LinkMode == "" {
		c.Organize.LinkMode = defaultLinkMode
	}
	if c.Organize.Workers == 0 {
		c.Organize.Workers = defaultWorkers
	}
	if c.Organize.TextCharLimit == 0 {
		c.Organize.TextCharLimit = defaultTextCharLimit
	}
	if c.Organize.PDFPageLimit == 0 {
		c.Organize.PDFPageLimit = defaultPDFPageLimit
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

func (c *Config) normalizePrompts() error {
	file := strings.TrimSpace(c.Prompts.File)
	if file == "" {
		c.Prompts.File = ""
		return nil
	}
	expanded, err := expandPath(file)
	if err != nil {
		return fmt.Errorf("prompts.file: %w", err)
	}
	c.Prompts.File = expanded
	return nil
}
