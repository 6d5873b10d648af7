package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abxsurvey/internal/config"
	"abxsurvey/internal/render"
)

func newTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "templates",
		Short:       "Survey template utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	cmd.AddCommand(newTemplatesInitCommand())
	return cmd
}

func newTemplatesInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Write the built-in intro, outro, instructions and question templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve template directory: %w", err)
			}
			written, err := render.WriteDefaults(dir, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(written) == 0 {
				fmt.Fprintf(out, "All templates already present in %s (use --force to overwrite)\n", dir)
				return nil
			}
			for _, path := range written {
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing templates")
	return cmd
}
