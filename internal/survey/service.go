package survey

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"abxsurvey/internal/config"
	"abxsurvey/internal/logging"
	"abxsurvey/internal/manifest"
	"abxsurvey/internal/marketplace"
	"abxsurvey/internal/storage"
)

// Marketplace is the subset of the MTurk client the workflow uses.
type Marketplace interface {
	Balance(ctx context.Context) (string, error)
	CreateHIT(ctx context.Context, req marketplace.HITRequest) (marketplace.HIT, error)
	ListHITs(ctx context.Context) ([]marketplace.HIT, error)
	ListReviewableHITs(ctx context.Context) ([]marketplace.HIT, error)
	ListQualifications(ctx context.Context) ([]marketplace.Qualification, error)
	SubmittedAssignments(ctx context.Context, hitID string) ([]marketplace.Assignment, error)
	PreviewURL(groupID string) string
	// Sandbox reports whether requests go to the requester sandbox.
	Sandbox() bool
}

// StoreFactory opens the object store for a survey's bucket. prefix keeps
// surveys sharing a bucket apart.
type StoreFactory func(bucket, prefix string) (storage.ObjectStore, error)

// Options configures a Service.
type Options struct {
	Config   *config.Config
	Manifest *manifest.Store
	// Market may be nil when only offline commands run.
	Market Marketplace
	Stores StoreFactory
	// Source drives every random choice of a run.
	Source rand.Source
	RunID  string
	Logger *slog.Logger
	Now    func() time.Time
}

// Service runs survey workflows.
type Service struct {
	cfg      *config.Config
	manifest *manifest.Store
	market   Marketplace
	stores   StoreFactory
	src      rand.Source
	rng      *rand.Rand
	runID    string
	base     *slog.Logger
	logger   *slog.Logger
	now      func() time.Time
	lockPath string
}

// New validates opts and builds a Service.
func New(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, Wrap(ErrConfiguration, "survey", "init", "config is required", nil)
	}
	if opts.Manifest == nil {
		return nil, Wrap(ErrConfiguration, "survey", "init", "manifest is required", nil)
	}
	if opts.Source == nil {
		return nil, Wrap(ErrConfiguration, "survey", "init", "random source is required", nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		cfg:      opts.Config,
		manifest: opts.Manifest,
		market:   opts.Market,
		stores:   opts.Stores,
		src:      opts.Source,
		rng:      rand.New(opts.Source),
		runID:    opts.RunID,
		base:     opts.Logger,
		logger:   logging.NewComponentLogger(opts.Logger, "survey"),
		now:      now,
		lockPath: filepath.Join(opts.Config.Paths.WorkDir, "abxsurvey.lock"),
	}, nil
}

// withLock runs fn while holding the work directory lock.
func (s *Service) withLock(fn func() error) error {
	if err := s.cfg.EnsureDirectories(); err != nil {
		return Wrap(ErrConfiguration, "survey", "prepare directories", "", err)
	}
	lock := flock.New(s.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", ErrLocked, s.lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release work directory lock", logging.Error(err))
		}
	}()
	return fn()
}

func (s *Service) requireMarket(step string) error {
	if s.market == nil {
		return Wrap(ErrConfiguration, step, "marketplace", "no marketplace client configured", nil)
	}
	return nil
}

func checkContext(ctx context.Context, step string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(ErrAborted, step, "", "", err)
	}
	return nil
}
