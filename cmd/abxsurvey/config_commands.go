package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"abxsurvey/internal/config"
	"abxsurvey/internal/partition"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "Write a commented sample configuration",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(args)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s exists; pass --force to replace it", target)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Next: set paths.audio_dir and mturk.credentials, then run 'abxsurvey templates init'.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")
	return cmd
}

func initTarget(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(strings.TrimSpace(args[0]))
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configSeen {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			layout := partition.Layout{
				MaxQuestions:   cfg.Survey.MaxQuestionsPerForm,
				DummyQuestions: cfg.Survey.DummyQuestionsPerForm,
			}
			fmt.Fprintf(out, "Forms: %d questions (%d comparisons, %d attention checks)\n",
				layout.MaxQuestions, layout.ComparisonsPerForm(), layout.DummyQuestions)
			fmt.Fprintf(out, "Storage: %s, marketplace sandbox: %s\n", cfg.Storage.Backend, yesNo(cfg.MTurk.Sandbox))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
