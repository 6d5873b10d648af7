package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateSurvey(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendS3:
	case BackendLocal:
		if c.Storage.LocalDir == "" {
			return errors.New("storage.local_dir must be set when storage.backend is local")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (expected s3 or local)", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateSurvey() error {
	s := c.Survey
	if s.Title == "" {
		return errors.New("survey.title must be set")
	}
	if s.MaxQuestionsPerForm <= 0 {
		return errors.New("survey.max_questions_per_form must be positive")
	}
	if s.DummyQuestionsPerForm < 0 {
		return errors.New("survey.dummy_questions_per_form must be non-negative")
	}
	if s.DummyQuestionsPerForm >= s.MaxQuestionsPerForm {
		return fmt.Errorf("survey.dummy_questions_per_form (%d) must be less than survey.max_questions_per_form (%d)",
			s.DummyQuestionsPerForm, s.MaxQuestionsPerForm)
	}
	if s.Coverage <= 0 {
		return errors.New("survey.coverage must be positive")
	}
	if _, err := c.RewardAmount(); err != nil {
		return err
	}
	if s.Lifetime <= 0 {
		return errors.New("survey.lifetime must be positive")
	}
	if s.Duration <= 0 {
		return errors.New("survey.duration must be positive")
	}
	if s.ApprovalDelay < 0 {
		return errors.New("survey.approval_delay must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// RewardAmount parses survey.reward as a dollar amount.
func (c *Config) RewardAmount() (float64, error) {
	value, err := strconv.ParseFloat(c.Survey.Reward, 64)
	if err != nil {
		return 0, fmt.Errorf("survey.reward: invalid amount %q", c.Survey.Reward)
	}
	if value <= 0 {
		return 0, errors.New("survey.reward must be positive")
	}
	return value, nil
}
