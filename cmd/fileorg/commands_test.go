package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fileorg/internal/config"
	"fileorg/internal/testsupport"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "fileorg", "config.toml")

	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration")
	requireFile(t, target)

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowRedactsAPIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = "super-secret"
	configPath := writeTestConfig(t, cfg)

	stdout, _, err := runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(stdout, "super-secret") {
		t.Fatalf("api key leaked: %q", stdout)
	}
	requireContains(t, stdout, "********")
	requireContains(t, stdout, configPath)
}

func TestConfigValidate(t *testing.T) {
	_, configPath := setupCLIConfig(t)
	stdout, _, err := runCLI(t, []string{"config", "validate"}, configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, stdout, "Configuration valid")
}

func TestConfigValidateRejectsBadMode(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "fileorg.toml")
	data := "[organize]\nmode = \"alphabetical\"\n[paths]\ndata_dir = \"" + filepath.Join(base, "data") + "\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, path); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestTreeCommand(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"b/second.txt": "2",
		"a/first.txt":  "1",
	})

	stdout, _, err := runCLI(t, []string{"tree", root}, "")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	requireContains(t, stdout, "first.txt")
	requireContains(t, stdout, "second.txt")
	if strings.Index(stdout, "first.txt") > strings.Index(stdout, "second.txt") {
		t.Fatalf("expected lexical order: %q", stdout)
	}
}

func TestHistoryShowsRunEntries(t *testing.T) {
	cfg, configPath := setupCLIConfig(t, testsupport.WithMode(config.ModeType), testsupport.WithLinkMode(config.LinkCopy))
	testsupport.WriteTree(t, cfg.Paths.InputDir, map[string]string{"a.txt": "a"})
	if _, _, err := runCLI(t, []string{"organize", "--yes"}, configPath); err != nil {
		t.Fatalf("organize: %v", err)
	}

	list, _, err := runCLI(t, []string{"history"}, configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, list, "type")

	lines := strings.Split(list, "\n")
	var id string
	for _, line := range lines {
		if strings.Contains(line, "type") {
			fields := strings.Fields(strings.Trim(line, "│ "))
			if len(fields) > 0 {
				id = fields[0]
			}
		}
	}
	if id == "" {
		t.Fatalf("no run id in %q", list)
	}

	detail, _, err := runCLI(t, []string{"history", id}, configPath)
	if err != nil {
		t.Fatalf("history %s: %v", id, err)
	}
	requireContains(t, detail, "applied 1, failed 0")
	requireContains(t, detail, filepath.Join(cfg.Paths.OutputDir, "texts", "a.txt"))
	requireContains(t, detail, "Log: "+filepath.Join(cfg.Paths.DataDir, "logs"))
}

func TestHistoryEmpty(t *testing.T) {
	_, configPath := setupCLIConfig(t)
	stdout, _, err := runCLI(t, []string{"history"}, configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, stdout, "No runs recorded")
}

func TestCheckCommandReportsFailures(t *testing.T) {
	cfg, configPath := setupCLIConfig(t, testsupport.WithMode(config.ModeType))
	stdout, _, err := runCLI(t, []string{"check"}, configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, stdout)
	}
	requireContains(t, stdout, "Input directory")

	missing := filepath.Join(testsupport.BaseDir(cfg), "missing")
	stdout, _, err = runCLI(t, []string{"check", "--input", missing}, configPath)
	if err == nil {
		t.Fatalf("expected check failure, got %q", stdout)
	}
	requireContains(t, stdout, "FAIL")
}
