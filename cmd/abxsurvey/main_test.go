package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"abxsurvey/internal/config"
	"abxsurvey/internal/marketplace"
	"abxsurvey/internal/survey"
)

func TestCipherCommandRoundTrip(t *testing.T) {
	out, _, err := runCLI(t, []string{"cipher", "encode", "reference_01.wav", "proposed_02.wav"}, "", "")
	if err != nil {
		t.Fatalf("cipher encode: %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 2 || lines[0] != "ersrerapr_01.wav" {
		t.Fatalf("unexpected encode output %q", out)
	}

	out, _, err = runCLI(t, append([]string{"cipher", "decode"}, lines...), "", "")
	if err != nil {
		t.Fatalf("cipher decode: %v", err)
	}
	if got := strings.Fields(out); len(got) != 2 || got[0] != "reference_01.wav" || got[1] != "proposed_02.wav" {
		t.Fatalf("unexpected decode output %q", out)
	}
}

func TestCipherCommandRejectsMissingExtension(t *testing.T) {
	if _, _, err := runCLI(t, []string{"cipher", "encode", "noext"}, "", ""); err == nil {
		t.Fatal("expected error for name without extension")
	}
}

func TestTemplatesInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")
	out, _, err := runCLI(t, []string{"templates", "init", dir}, "", "")
	if err != nil {
		t.Fatalf("templates init: %v", err)
	}
	for _, name := range []string{"intro.html", "outro.html", "instructions.html", "question.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	requireContains(t, out, "question.html")

	out, _, err = runCLI(t, []string{"templates", "init", dir}, "", "")
	if err != nil {
		t.Fatalf("templates init again: %v", err)
	}
	requireContains(t, out, "already present")
}

func TestCreateDryRun(t *testing.T) {
	env := setupCLITestEnv(t, 4)

	out, _, err := runCLI(t, []string{"create", "--dry-run", "--seed", "3"}, env.configPath, "")
	if err != nil {
		t.Fatalf("create --dry-run: %v", err)
	}
	requireContains(t, out, "Dry run")
	id := surveyIDFrom(t, out)

	for _, form := range []string{"1", "2"} {
		path := filepath.Join(env.cfg.Paths.WorkDir, "survey-"+id+"-"+form+".xml")
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected survey document %s: %v", path, err)
		}
	}
	if env.market.createdCount() != 0 {
		t.Fatalf("dry run created %d HITs", env.market.createdCount())
	}

	out, _, err = runCLI(t, []string{"surveys", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("surveys list: %v", err)
	}
	requireContains(t, out, "No surveys recorded")
}

func TestCreateFailsPreflightWithoutAudio(t *testing.T) {
	env := setupCLITestEnv(t, 0)
	out, _, err := runCLI(t, []string{"create", "--dry-run"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected preflight failure")
	}
	requireContains(t, out, "Audio")
}

func TestCreateDryRunChecksCredentialsForS3(t *testing.T) {
	env := setupCLITestEnv(t, 2)
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	env.cfg.Storage.Backend = config.BackendS3
	env.cfg.MTurk.Credentials = ""
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"create", "--dry-run"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected preflight failure without credentials")
	}
	requireContains(t, out, "AWS credentials")
	if _, statErr := os.Stat(env.cfg.Paths.WorkDir); statErr == nil {
		entries, _ := os.ReadDir(env.cfg.Paths.WorkDir)
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".xml") {
				t.Fatalf("preflight failure still rendered %s", e.Name())
			}
		}
	}
}

func TestCreateAndPublish(t *testing.T) {
	env := setupCLITestEnv(t, 4)

	out, _, err := runCLI(t, []string{"create", "--yes", "--seed", "11"}, env.configPath, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	requireContains(t, out, "Published 2 forms")
	id := surveyIDFrom(t, out)
	if env.market.createdCount() != 2 {
		t.Fatalf("expected 2 HITs, got %d", env.market.createdCount())
	}
	requireContains(t, env.market.created[0].Title, "("+id+"-1)")

	out, _, err = runCLI(t, []string{"surveys", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("surveys list: %v", err)
	}
	requireContains(t, out, id)
	requireContains(t, out, "Published")

	exportPath := filepath.Join(env.baseDir, "export", id+".yaml")
	if _, _, err := runCLI(t, []string{"surveys", "export", id, "--out", exportPath}, env.configPath, ""); err != nil {
		t.Fatalf("surveys export: %v", err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	requireContains(t, string(data), "hit_id: HIT1")

	out, _, err = runCLI(t, []string{"publish", id, "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("publish again: %v", err)
	}
	requireContains(t, out, "already published")
}

func TestCreateDeclinedLeavesSurveyForPublish(t *testing.T) {
	env := setupCLITestEnv(t, 2)

	out, _, err := runCLI(t, []string{"create"}, env.configPath, "n\n")
	if err != nil {
		t.Fatalf("declined create should not fail: %v", err)
	}
	requireContains(t, out, "Not published")
	id := surveyIDFrom(t, out)
	if env.market.createdCount() != 0 {
		t.Fatalf("declined create made %d HITs", env.market.createdCount())
	}

	out, _, err = runCLI(t, []string{"publish", id}, env.configPath, "y\n")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	requireContains(t, out, "Published 1 forms")
}

func TestSurveysDeleteRemovesDraft(t *testing.T) {
	env := setupCLITestEnv(t, 2)

	out, _, err := runCLI(t, []string{"create", "--no-publish"}, env.configPath, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := surveyIDFrom(t, out)

	out, _, err = runCLI(t, []string{"surveys", "delete", id}, env.configPath, "n\n")
	if err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	requireContains(t, out, "Nothing deleted")

	out, _, err = runCLI(t, []string{"surveys", "delete", id, "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireContains(t, out, "Deleted survey "+id)

	out, _, err = runCLI(t, []string{"surveys", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("surveys list: %v", err)
	}
	requireContains(t, out, "No surveys recorded")
}

func TestSurveysDeleteRefusesPublishedWithoutForce(t *testing.T) {
	env := setupCLITestEnv(t, 2)

	out, _, err := runCLI(t, []string{"create", "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := surveyIDFrom(t, out)

	if _, _, err := runCLI(t, []string{"surveys", "delete", id, "--yes"}, env.configPath, ""); err == nil {
		t.Fatal("expected delete of a published survey to fail without --force")
	}
	if _, _, err := runCLI(t, []string{"surveys", "delete", id, "--yes", "--force"}, env.configPath, ""); err != nil {
		t.Fatalf("forced delete: %v", err)
	}
}

func TestResultsDecodesAnswers(t *testing.T) {
	env := setupCLITestEnv(t, 2)

	out, _, err := runCLI(t, []string{"create", "--yes"}, env.configPath, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := surveyIDFrom(t, out)
	env.market.assignments = map[string][]marketplace.Assignment{
		"HIT1": {{
			ID:       "A1",
			WorkerID: "W1",
			Status:   "Submitted",
			Answers: []marketplace.Answer{
				{QuestionIdentifier: "q1", FreeText: "A"},
				{QuestionIdentifier: "q2", FreeText: "B"},
				{QuestionIdentifier: "q3", FreeText: "A"},
			},
		}},
	}

	out, _, err = runCLI(t, []string{"results", id, "--verbose"}, env.configPath, "")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	requireContains(t, out, "W1")
	requireContains(t, out, "Checks passed")
	requireContains(t, out, ".wav")

	out, _, err = runCLI(t, []string{"results", id, "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("results --json: %v", err)
	}
	requireContains(t, out, `"WorkerID": "W1"`)
}

func TestStatusWithoutMarketplace(t *testing.T) {
	env := setupCLITestEnv(t, 2)
	marketFactory = func(*config.Config, *slog.Logger) (survey.Marketplace, error) {
		return nil, errNoCredentials
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath, "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Readiness\n---------")
	requireContains(t, out, "Survey templates")
	requireContains(t, out, "[WARN] load credentials")
}

func TestStatusListsHITs(t *testing.T) {
	env := setupCLITestEnv(t, 2)
	if _, _, err := runCLI(t, []string{"create", "--yes"}, env.configPath, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath, "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Active HITs (sandbox)")
	requireContains(t, out, "HIT1")
	requireContains(t, out, "listeners")
	requireContains(t, out, "balance $100.00")
}
