package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"abxsurvey/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "abxsurvey")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.ManifestPath() != filepath.Join(wantWork, "manifest.db") {
		t.Fatalf("unexpected manifest path: %q", cfg.ManifestPath())
	}
	if !cfg.MTurk.Sandbox {
		t.Fatal("expected sandbox enabled by default")
	}
	if cfg.MarketplaceEndpoint() != config.SandboxEndpoint {
		t.Fatalf("unexpected endpoint: %q", cfg.MarketplaceEndpoint())
	}
	if cfg.Storage.Backend != config.BackendS3 {
		t.Fatalf("unexpected backend: %q", cfg.Storage.Backend)
	}
}

func TestLoadCustomTOML(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
audio_dir = "~/clips"

[audio]
ext = ".WAV"

[storage]
backend = "LOCAL"
local_dir = "~/objects"

[survey]
title = "  ABX  "
max_questions_per_form = 5
dummy_questions_per_form = 1
reward = "$0.25"

[mturk]
sandbox = false
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != cfgPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.AudioDir != filepath.Join(tempHome, "clips") {
		t.Fatalf("unexpected audio dir: %q", cfg.Paths.AudioDir)
	}
	if cfg.Audio.Ext != "wav" {
		t.Fatalf("unexpected ext: %q", cfg.Audio.Ext)
	}
	if cfg.Storage.Backend != config.BackendLocal || cfg.Storage.LocalDir != filepath.Join(tempHome, "objects") {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Survey.Title != "ABX" {
		t.Fatalf("unexpected title: %q", cfg.Survey.Title)
	}
	reward, err := cfg.RewardAmount()
	if err != nil || reward != 0.25 {
		t.Fatalf("unexpected reward %v err=%v", reward, err)
	}
	if cfg.MarketplaceEndpoint() != "" {
		t.Fatalf("expected production endpoint, got %q", cfg.MarketplaceEndpoint())
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
paths:
  assets_dir: ./survey
survey:
  title: Listening test
  max_questions_per_form: 8
  dummy_questions_per_form: 2
  coverage: 5
  reward: "0.10"
mturk:
  sandbox: true
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Survey.MaxQuestionsPerForm != 8 || cfg.Survey.Coverage != 5 {
		t.Fatalf("unexpected survey section: %+v", cfg.Survey)
	}
	if !strings.HasSuffix(cfg.Paths.AssetsDir, "survey") {
		t.Fatalf("unexpected assets dir: %q", cfg.Paths.AssetsDir)
	}
	if cfg.Survey.Lifetime != config.Default().Survey.Lifetime {
		t.Fatalf("expected default lifetime to survive partial YAML, got %d", cfg.Survey.Lifetime)
	}
}

func TestValidateNamesOffendingKey(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"dummy too large", func(c *config.Config) { c.Survey.DummyQuestionsPerForm = c.Survey.MaxQuestionsPerForm }, "survey.dummy_questions_per_form"},
		{"zero max", func(c *config.Config) { c.Survey.MaxQuestionsPerForm = 0 }, "survey.max_questions_per_form"},
		{"negative dummy", func(c *config.Config) { c.Survey.DummyQuestionsPerForm = -1 }, "survey.dummy_questions_per_form"},
		{"coverage", func(c *config.Config) { c.Survey.Coverage = 0 }, "survey.coverage"},
		{"reward text", func(c *config.Config) { c.Survey.Reward = "lots" }, "survey.reward"},
		{"reward zero", func(c *config.Config) { c.Survey.Reward = "0" }, "survey.reward"},
		{"backend", func(c *config.Config) { c.Storage.Backend = "ftp" }, "storage.backend"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample failed to load: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.Backend = config.BackendLocal
	cfg.Storage.LocalDir = filepath.Join(base, "objects")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, cfg.Storage.LocalDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q", dir)
		}
	}
}
