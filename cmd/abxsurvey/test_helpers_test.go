package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"abxsurvey/internal/config"
	"abxsurvey/internal/marketplace"
	"abxsurvey/internal/survey"
	"abxsurvey/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	market     *fakeMarket
}

func setupCLITestEnv(t *testing.T, comparisons int) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t, testsupport.WithDefaultTemplates(), testsupport.WithLayout(3, 1))
	if comparisons > 0 {
		testsupport.WriteAudioSet(t, cfg.Paths.AudioDir, comparisons, false)
	}

	configPath := filepath.Join(homeDir, ".config", "abxsurvey", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	market := &fakeMarket{balance: "100.00"}
	previous := marketFactory
	marketFactory = func(*config.Config, *slog.Logger) (survey.Marketplace, error) {
		return market, nil
	}
	t.Cleanup(func() { marketFactory = previous })

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		market:     market,
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

var surveyIDPattern = regexp.MustCompile(`Survey (\d{6}) \(`)

func surveyIDFrom(t *testing.T, output string) string {
	t.Helper()
	m := surveyIDPattern.FindStringSubmatch(output)
	if m == nil {
		t.Fatalf("no survey id in output %q", output)
	}
	return m[1]
}

type fakeMarket struct {
	mu          sync.Mutex
	balance     string
	balanceErr  error
	created     []marketplace.HITRequest
	assignments map[string][]marketplace.Assignment
}

func (f *fakeMarket) Balance(context.Context) (string, error) {
	return f.balance, f.balanceErr
}

func (f *fakeMarket) CreateHIT(_ context.Context, req marketplace.HITRequest) (marketplace.HIT, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	n := strconv.Itoa(len(f.created))
	return marketplace.HIT{ID: "HIT" + n, GroupID: "GRP" + n, Title: req.Title, Status: "Assignable"}, nil
}

func (f *fakeMarket) ListHITs(context.Context) ([]marketplace.HIT, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hits := make([]marketplace.HIT, 0, len(f.created))
	for i, req := range f.created {
		n := strconv.Itoa(i + 1)
		hits = append(hits, marketplace.HIT{
			ID:        "HIT" + n,
			GroupID:   "GRP" + n,
			Title:     req.Title,
			Status:    "Assignable",
			Available: req.MaxAssignment,
			Expires:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return hits, nil
}

func (f *fakeMarket) ListReviewableHITs(context.Context) ([]marketplace.HIT, error) {
	return nil, nil
}

func (f *fakeMarket) ListQualifications(context.Context) ([]marketplace.Qualification, error) {
	return []marketplace.Qualification{{ID: "Q1", Name: "listeners", Status: "Active"}}, nil
}

func (f *fakeMarket) SubmittedAssignments(_ context.Context, hitID string) ([]marketplace.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignments[hitID], nil
}

func (f *fakeMarket) Sandbox() bool { return true }

func (f *fakeMarket) PreviewURL(groupID string) string {
	return marketplace.PreviewURL(true, groupID)
}

func (f *fakeMarket) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

var errNoCredentials = errors.New("load credentials: no credentials configured")
