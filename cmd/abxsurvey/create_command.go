package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"abxsurvey/internal/config"
	"abxsurvey/internal/marketplace"
	"abxsurvey/internal/preflight"
	"abxsurvey/internal/survey"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var seed uint64
	var dryRun bool
	var assumeYes bool
	var noPublish bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Partition audio into forms, upload them and publish one HIT per form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			checks := []preflight.Result{
				preflight.CheckTemplates(cfg.Paths.AssetsDir),
				preflight.CheckAudio(cfg),
			}
			if cfg.Storage.Backend != config.BackendLocal {
				checks = append(checks, preflight.CheckCredentials(cfg))
			}
			if failed := preflight.Failed(checks); len(failed) > 0 {
				for _, line := range preflightLines(failed, isTerminal(out)) {
					fmt.Fprintln(out, line)
				}
				return fmt.Errorf("preflight failed: %s", failed[0].Detail)
			}

			opts := serviceOptions{
				market: !dryRun && !noPublish,
				seed:   seed,
				seeded: cmd.Flags().Changed("seed"),
			}
			return ctx.withService(opts, func(svc *survey.Service) error {
				plan, err := svc.Create(cmd.Context(), survey.CreateOptions{DryRun: dryRun})
				if err != nil {
					return err
				}
				printPlan(out, plan)
				id := plan.Survey.ID
				switch {
				case dryRun:
					fmt.Fprintln(out, "Dry run: no audio uploaded and no survey recorded.")
					return nil
				case noPublish:
					fmt.Fprintf(out, "Survey %s saved. Publish it with 'abxsurvey publish %s'.\n", id, id)
					return nil
				}
				return publishSurvey(cmd, svc, id, assumeYes)
			})
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed the random source for a reproducible layout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render survey documents without uploading or saving")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Publish without asking for confirmation")
	cmd.Flags().BoolVar(&noPublish, "no-publish", false, "Upload and record the survey but do not create HITs")
	return cmd
}

func printPlan(out io.Writer, plan *survey.Plan) {
	record := plan.Survey
	fmt.Fprintf(out, "Survey %s (%s mode)\n", record.ID, record.Mode)
	fmt.Fprintf(out, "  Bucket:   %s (%s)\n", record.Bucket, record.Region)
	fmt.Fprintf(out, "  Forms:    %d x %d questions (%d attention checks each)\n",
		len(record.Forms), record.MaxQuestions, record.DummyQuestions)
	fmt.Fprintf(out, "  Dummies:  %d written\n", len(plan.Dummies))
	if !plan.DryRun {
		fmt.Fprintf(out, "  Uploaded: %d objects\n", plan.Uploaded)
	}
	fmt.Fprintf(out, "  Cost:     %s\n", marketplace.FormatCost(plan.Cost))

	rows := make([][]string, 0, len(record.Forms))
	for _, f := range record.Forms {
		padded := 0
		for _, q := range f.Questions {
			if q.Padded {
				padded++
			}
		}
		rows = append(rows, []string{strconv.Itoa(f.Index), strconv.Itoa(len(f.Questions)), strconv.Itoa(padded), f.XMLPath})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Form", "Questions", "Repeated", "Document"}, rows, 1, 2, 3))
	}
}

// publishSurvey quotes the cost, asks for confirmation unless assumeYes, and
// creates HITs for every unpublished form of id.
func publishSurvey(cmd *cobra.Command, svc *survey.Service, id string, assumeYes bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	record, err := svc.Survey(ctx, id)
	if err != nil {
		return err
	}
	quote, err := svc.Quote(ctx, record)
	if err != nil {
		return err
	}
	if quote.Forms == 0 {
		fmt.Fprintf(out, "Every form of survey %s is already published.\n", id)
		return nil
	}
	fmt.Fprintf(out, "Publishing %d forms x %d assignments at $%s: %s including fees (balance $%s)\n",
		quote.Forms, quote.Coverage, quote.Reward, marketplace.FormatCost(quote.Cost), quote.Balance)

	if !assumeYes {
		ok, err := confirm(cmd.InOrStdin(), out, "Create HITs? [y/N]: ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "Not published. Files in bucket %s and survey documents remain; run 'abxsurvey publish %s' to continue.\n",
				record.Bucket, id)
			return nil
		}
	}

	published, err := svc.Publish(ctx, id)
	if len(published) > 0 {
		rows := make([][]string, 0, len(published))
		for _, p := range published {
			rows = append(rows, []string{strconv.Itoa(p.Index), p.HITID, p.PreviewURL})
		}
		fmt.Fprintln(out, renderTable([]string{"Form", "HIT", "Preview"}, rows, 1))
	}
	if err != nil {
		return fmt.Errorf("published %d of %d forms: %w", len(published), quote.Forms, err)
	}
	fmt.Fprintf(out, "Published %d forms of survey %s.\n", len(published), id)
	return nil
}
