package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"abxsurvey/internal/config"
	"abxsurvey/internal/logging"
	"abxsurvey/internal/manifest"
	"abxsurvey/internal/marketplace"
	"abxsurvey/internal/storage"
	"abxsurvey/internal/survey"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	runID      string

	// marketErr records why an optional marketplace client is missing.
	marketErr error

	newMarket func(cfg *config.Config, logger *slog.Logger) (survey.Marketplace, error)
}

// marketFactory builds the marketplace client; tests replace it.
var marketFactory = newMarketplaceClient

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		newMarket:     marketFactory,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyLogOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) applyLogOverrides(cfg *config.Config) error {
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
	}
	if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(*c.logFormatFlag))
	}
	return cfg.Validate()
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var logErr error
	c.loggerOnce.Do(func() {
		c.runID = uuid.NewString()
		c.logger, logErr = logging.NewFromConfig(cfg, c.runID)
	})
	if logErr != nil {
		return nil, fmt.Errorf("init logger: %w", logErr)
	}
	return c.logger, nil
}

// serviceOptions controls how withService wires the workflow.
type serviceOptions struct {
	// market requests a marketplace client; building it needs credentials.
	market bool
	// optionalMarket keeps going without a client when it cannot be built.
	optionalMarket bool
	// seed fixes the random source when seeded is set.
	seed   uint64
	seeded bool
}

// withService opens the manifest, builds a survey.Service and runs fn.
func (c *commandContext) withService(opts serviceOptions, fn func(*survey.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	store, err := manifest.Open(cfg.ManifestPath())
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close manifest", logging.Error(err))
		}
	}()

	var market survey.Marketplace
	if opts.market || opts.optionalMarket {
		market, err = c.newMarket(cfg, logger)
		if err != nil {
			if !opts.optionalMarket {
				return err
			}
			c.marketErr = err
			market = nil
		}
	}

	svc, err := survey.New(survey.Options{
		Config:   cfg,
		Manifest: store,
		Market:   market,
		Stores:   storeFactory(cfg),
		Source:   newSource(opts.seed, opts.seeded),
		RunID:    c.runID,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return fn(svc)
}

func newSource(seed uint64, seeded bool) rand.Source {
	if !seeded {
		now := uint64(time.Now().UnixNano())
		return rand.NewPCG(now, now^0x9e3779b97f4a7c15)
	}
	return rand.NewPCG(seed, seed)
}

func newMarketplaceClient(cfg *config.Config, logger *slog.Logger) (survey.Marketplace, error) {
	provider, err := credentialsProvider(cfg)
	if err != nil {
		return nil, err
	}
	api := marketplace.NewAPI(cfg.MTurk.Region, cfg.MarketplaceEndpoint(), provider)
	return marketplace.New(api, cfg.MTurk.Sandbox, logger), nil
}

func credentialsProvider(cfg *config.Config) (aws.CredentialsProvider, error) {
	creds, err := cfg.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
			Source:          creds.Source,
		}, nil
	}), nil
}

func storeFactory(cfg *config.Config) survey.StoreFactory {
	return func(bucket, prefix string) (storage.ObjectStore, error) {
		if cfg.Storage.Backend == config.BackendLocal {
			local, err := storage.NewLocal(filepath.Join(cfg.Storage.LocalDir, bucket), prefix)
			if err != nil {
				return nil, err
			}
			return local, nil
		}
		provider, err := credentialsProvider(cfg)
		if err != nil {
			return nil, err
		}
		client := storage.NewS3Client(cfg.Storage.Region, cfg.Storage.Endpoint, provider)
		return storage.NewS3(client, storage.S3Options{
			Bucket:     bucket,
			Region:     cfg.Storage.Region,
			Prefix:     prefix,
			PublicRead: cfg.Storage.PublicRead,
			Endpoint:   cfg.Storage.Endpoint,
		}), nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
