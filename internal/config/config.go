package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	AssetsDir string `toml:"assets_dir" yaml:"assets_dir"`
	AudioDir  string `toml:"audio_dir" yaml:"audio_dir"`
	WorkDir   string `toml:"work_dir" yaml:"work_dir"`
	LogDir    string `toml:"log_dir" yaml:"log_dir"`
}

// Audio controls asset discovery.
type Audio struct {
	Ext string `toml:"ext" yaml:"ext"`
}

// Storage selects where form audio is published.
type Storage struct {
	// Backend is "s3" or "local".
	Backend    string `toml:"backend" yaml:"backend"`
	Bucket     string `toml:"bucket" yaml:"bucket"`
	Region     string `toml:"region" yaml:"region"`
	PublicRead bool   `toml:"public_read" yaml:"public_read"`
	LocalDir   string `toml:"local_dir" yaml:"local_dir"`
	// Endpoint overrides the S3 endpoint, mainly for S3-compatible stores.
	Endpoint string `toml:"endpoint" yaml:"endpoint"`
}

// Survey holds the form layout and HIT parameters.
type Survey struct {
	Title                 string `toml:"title" yaml:"title"`
	Description           string `toml:"description" yaml:"description"`
	Keywords              string `toml:"keywords" yaml:"keywords"`
	MaxQuestionsPerForm   int    `toml:"max_questions_per_form" yaml:"max_questions_per_form"`
	DummyQuestionsPerForm int    `toml:"dummy_questions_per_form" yaml:"dummy_questions_per_form"`
	Coverage              int    `toml:"coverage" yaml:"coverage"`
	Reward                string `toml:"reward" yaml:"reward"`
	Lifetime              int    `toml:"lifetime" yaml:"lifetime"`
	Duration              int    `toml:"duration" yaml:"duration"`
	ApprovalDelay         int    `toml:"approval_delay" yaml:"approval_delay"`
}

// MTurk contains marketplace connection settings.
type MTurk struct {
	Sandbox     bool   `toml:"sandbox" yaml:"sandbox"`
	Credentials string `toml:"credentials" yaml:"credentials"`
	Region      string `toml:"region" yaml:"region"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Config encapsulates all configuration values for abxsurvey.
type Config struct {
	Paths   Paths   `toml:"paths" yaml:"paths"`
	Audio   Audio   `toml:"audio" yaml:"audio"`
	Storage Storage `toml:"storage" yaml:"storage"`
	Survey  Survey  `toml:"survey" yaml:"survey"`
	MTurk   MTurk   `toml:"mturk" yaml:"mturk"`
	Logging Logging `toml:"logging" yaml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/abxsurvey/config.toml")
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
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := decode(resolvedPath, data, &cfg); err != nil {
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

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	}
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

	projectPath, err := filepath.Abs("abxsurvey.toml")
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

// EnsureDirectories creates the directories the workflow writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.LogDir}
	if c.Storage.Backend == BackendLocal {
		dirs = append(dirs, c.Storage.LocalDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ManifestPath returns the location of the survey manifest database.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.WorkDir, "manifest.db")
}

// MarketplaceEndpoint returns the MTurk requester endpoint override, or an
// empty string for the production default.
func (c *Config) MarketplaceEndpoint() string {
	if c.MTurk.Sandbox {
		return SandboxEndpoint
	}
	return ""
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
