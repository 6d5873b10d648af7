package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"abxsurvey/internal/marketplace"
	"abxsurvey/internal/survey"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show readiness checks, active HITs, reviewable HITs and qualification types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			return ctx.withService(serviceOptions{optionalMarket: true}, func(svc *survey.Service) error {
				printHeading(out, "Readiness", colorize)
				for _, line := range preflightLines(svc.Preflight(cmd.Context()), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out)

				if ctx.marketErr != nil {
					fmt.Fprintln(out, checkLine("Marketplace", checkWarn, ctx.marketErr.Error(), colorize))
					return nil
				}
				report, err := svc.Status(cmd.Context())
				if err != nil {
					return err
				}
				printStatusReport(out, report, colorize)
				return nil
			})
		},
	}
}

func printStatusReport(out io.Writer, report survey.StatusReport, colorize bool) {
	target := "production"
	if report.Sandbox {
		target = "sandbox"
	}
	printHeading(out, fmt.Sprintf("Active HITs (%s)", target), colorize)
	printHITs(out, report.Active)

	printHeading(out, "Reviewable HITs", colorize)
	printHITs(out, report.Reviewable)

	printHeading(out, "Qualification types", colorize)
	if len(report.Qualifications) == 0 {
		fmt.Fprintln(out, "None")
		return
	}
	rows := make([][]string, 0, len(report.Qualifications))
	for _, q := range report.Qualifications {
		rows = append(rows, []string{q.ID, q.Name, titleWord(q.Status)})
	}
	fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Status"}, rows))
}

func printHITs(out io.Writer, hits []marketplace.HIT) {
	if len(hits) == 0 {
		fmt.Fprintln(out, "None")
		fmt.Fprintln(out)
		return
	}
	rows := make([][]string, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, []string{
			h.ID,
			h.Title,
			titleWord(h.Status),
			strconv.Itoa(h.Available),
			strconv.Itoa(h.Pending),
			strconv.Itoa(h.Completed),
			formatTime(h.Expires),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"HIT", "Title", "Status", "Available", "Pending", "Completed", "Expires"},
		rows, 4, 5, 6,
	))
	fmt.Fprintln(out)
}
