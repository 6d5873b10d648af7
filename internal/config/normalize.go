package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeSurvey()
	if err := c.normalizeMTurk(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.AssetsDir, err = expandPath(c.Paths.AssetsDir); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendS3
	}
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultRegion
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	var err error
	if c.Storage.LocalDir, err = expandPath(c.Storage.LocalDir); err != nil {
		return fmt.Errorf("storage.local_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.Ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Audio.Ext)), ".")
	if c.Audio.Ext == "" {
		c.Audio.Ext = defaultAudioExt
	}
}

func (c *Config) normalizeSurvey() {
	c.Survey.Title = strings.TrimSpace(c.Survey.Title)
	c.Survey.Description = strings.TrimSpace(c.Survey.Description)
	c.Survey.Keywords = strings.TrimSpace(c.Survey.Keywords)
	c.Survey.Reward = strings.TrimPrefix(strings.TrimSpace(c.Survey.Reward), "$")
}

func (c *Config) normalizeMTurk() error {
	c.MTurk.Region = strings.TrimSpace(c.MTurk.Region)
	if c.MTurk.Region == "" {
		c.MTurk.Region = defaultRegion
	}
	var err error
	if c.MTurk.Credentials, err = expandPath(strings.TrimSpace(c.MTurk.Credentials)); err != nil {
		return fmt.Errorf("mturk.credentials: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
