package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, 0)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Forms: 3 questions (2 comparisons, 1 attention checks)")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", target}, "", ""); err == nil {
		t.Fatal("expected error when config exists without --force")
	}
	if _, _, err := runCLI(t, []string{"config", "init", target, "--force"}, "", ""); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestLogLevelFlagRejectsUnknownLevel(t *testing.T) {
	env := setupCLITestEnv(t, 0)
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", env.configPath, "--log-level", "loud", "config", "validate"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected invalid log level to fail")
	}
}
