package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"abxsurvey/internal/audio"
	"abxsurvey/internal/config"
	"abxsurvey/internal/partition"
	"abxsurvey/internal/render"
)

// Balancer is satisfied by the marketplace client.
type Balancer interface {
	Balance(ctx context.Context) (string, error)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTemplates verifies the four survey templates are present.
func CheckTemplates(dir string) Result {
	const name = "Survey templates"
	if missing := render.MissingTemplates(dir); len(missing) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (missing: %s; run 'abxsurvey templates init')", dir, strings.Join(missing, ", "))}
	}
	return Result{Name: name, Passed: true, Detail: dir}
}

// CheckAudio verifies the audio directory is readable and its lists line up.
func CheckAudio(cfg *config.Config) Result {
	const name = "Audio"
	dir := cfg.Paths.AudioDir
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	set, err := audio.Discover(dir, cfg.Audio.Ext)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	mode, err := partition.DetectMode(set.Reference, set.Proposed, set.Baseline)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if len(set.Reference) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (no reference_*.%s files)", dir, cfg.Audio.Ext)}
	}
	layout := partition.Layout{
		MaxQuestions:   cfg.Survey.MaxQuestionsPerForm,
		DummyQuestions: cfg.Survey.DummyQuestionsPerForm,
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d comparisons, %s mode, %d forms",
		len(set.Reference), mode, layout.FormCount(len(set.Reference)))}
}

// CheckCredentials verifies an AWS key pair can be loaded.
func CheckCredentials(cfg *config.Config) Result {
	const name = "AWS credentials"
	creds, err := cfg.LoadCredentials()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", maskKey(creds.AccessKeyID), creds.Source)}
}

// CheckMarketplace verifies the requester API answers a balance query.
func CheckMarketplace(ctx context.Context, market Balancer) Result {
	const name = "Marketplace"
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	balance, err := market.Balance(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "balance $" + balance}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// summarizeError produces a human-readable summary for marketplace check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "balance check timed out (marketplace unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "balance check timed out (marketplace unreachable)"
	}
	return err.Error()
}
