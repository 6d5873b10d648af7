package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"abxsurvey/internal/manifest"
	"abxsurvey/internal/survey"
)

func newSurveysCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "surveys",
		Aliases: []string{"survey"},
		Short:   "Inspect surveys recorded in the manifest",
	}
	cmd.AddCommand(newSurveysListCommand(ctx))
	cmd.AddCommand(newSurveysShowCommand(ctx))
	cmd.AddCommand(newSurveysExportCommand(ctx))
	cmd.AddCommand(newSurveysDeleteCommand(ctx))
	return cmd
}

func newSurveysListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded surveys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return ctx.withService(serviceOptions{}, func(svc *survey.Service) error {
				list, err := svc.Surveys(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No surveys recorded")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, s := range list {
					rows = append(rows, []string{
						s.ID,
						titleWord(string(s.Status)),
						s.Mode,
						fmt.Sprintf("%d/%d", publishedForms(s), len(s.Forms)),
						s.Bucket,
						yesNo(s.Sandbox),
						formatTime(s.CreatedAt),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Status", "Mode", "Published", "Bucket", "Sandbox", "Created"},
					rows, 4,
				))
				return nil
			})
		},
	}
}

func newSurveysShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <survey-id>",
		Short: "Show the forms and slots of a survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return ctx.withService(serviceOptions{}, func(svc *survey.Service) error {
				record, err := svc.Survey(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				printSurvey(out, record)
				return nil
			})
		},
	}
}

func newSurveysExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <survey-id>",
		Short: "Export a survey manifest as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(serviceOptions{}, func(svc *survey.Service) error {
				record, err := svc.Survey(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if strings.TrimSpace(outPath) == "" {
					return manifest.ExportYAML(cmd.OutOrStdout(), record)
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export directory: %w", err)
				}
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := manifest.ExportYAML(f, record); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close export file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported survey %s to %s\n", record.ID, outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write YAML to this file instead of stdout")
	return cmd
}

func newSurveysDeleteCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <survey-id>",
		Short: "Delete a survey's uploaded audio, documents and manifest record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id := strings.TrimSpace(args[0])
			return ctx.withService(serviceOptions{}, func(svc *survey.Service) error {
				record, err := svc.Survey(cmd.Context(), id)
				if err != nil {
					return err
				}
				if live := publishedForms(record); live > 0 {
					fmt.Fprintf(out, "Survey %s has %d HITs; they stay on the marketplace.\n", record.ID, live)
				}
				if !assumeYes {
					ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete survey %s from %s? [y/N]: ", record.ID, record.Bucket))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Nothing deleted.")
						return nil
					}
				}
				removal, err := svc.Delete(cmd.Context(), record.ID, survey.DeleteOptions{Force: force})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted survey %s (%d objects, %d documents)\n",
					removal.SurveyID, removal.Objects, removal.Documents)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Delete even when HITs were created for the survey")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func publishedForms(s *manifest.Survey) int {
	n := 0
	for _, f := range s.Forms {
		if f.Published() {
			n++
		}
	}
	return n
}

func printSurvey(out io.Writer, s *manifest.Survey) {
	fmt.Fprintf(out, "Survey:   %s\n", s.ID)
	fmt.Fprintf(out, "Run:      %s\n", s.RunID)
	fmt.Fprintf(out, "Status:   %s\n", titleWord(string(s.Status)))
	fmt.Fprintf(out, "Mode:     %s\n", s.Mode)
	fmt.Fprintf(out, "Title:    %s\n", s.Title)
	fmt.Fprintf(out, "Storage:  %s %s (%s)\n", s.Backend, s.Bucket, s.Region)
	fmt.Fprintf(out, "Sandbox:  %s\n", yesNo(s.Sandbox))
	fmt.Fprintf(out, "Layout:   %d questions, %d attention checks\n", s.MaxQuestions, s.DummyQuestions)
	fmt.Fprintf(out, "Coverage: %d x $%s\n", s.Coverage, s.Reward)
	fmt.Fprintf(out, "Created:  %s\n", formatTime(s.CreatedAt))

	for _, f := range s.Forms {
		hit := f.HITID
		if hit == "" {
			hit = "unpublished"
		}
		fmt.Fprintf(out, "\nForm %d (%s)\n", f.Index, hit)
		rows := make([][]string, 0, len(f.Questions))
		for _, q := range f.Questions {
			kind := string(q.Kind)
			if q.Padded {
				kind += " (repeat)"
			}
			rows = append(rows, []string{
				strconv.Itoa(q.Slot),
				kind,
				q.PlacementA + " / " + q.PlacementB,
				q.Reference,
				q.CipherA,
				q.CipherB,
				q.CipherX,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Slot", "Kind", "A / B", "Reference", "A", "B", "X"},
			rows, 1,
		))
	}
}
