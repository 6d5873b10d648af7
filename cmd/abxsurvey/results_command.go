package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"abxsurvey/internal/survey"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "results <survey-id>",
		Short: "List submitted assignments and decode each answer to the file it picked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withService(serviceOptions{market: true}, func(svc *survey.Service) error {
				results, err := svc.Results(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, results)
				}
				printResults(cmd.OutOrStdout(), results, verbose, isTerminal(cmd.OutOrStdout()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every decoded answer")
	return cmd
}

func printResults(out io.Writer, results []survey.FormResult, verbose, colorize bool) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No published forms.")
		return
	}
	for _, fr := range results {
		printHeading(out, fmt.Sprintf("Form %d (HIT %s)", fr.Form, fr.HITID), colorize)
		if len(fr.Assignments) == 0 {
			fmt.Fprintln(out, "No submissions yet")
			fmt.Fprintln(out)
			continue
		}
		rows := make([][]string, 0, len(fr.Assignments))
		for _, a := range fr.Assignments {
			rows = append(rows, []string{
				a.WorkerID,
				a.ID,
				titleWord(a.Status),
				formatTime(a.SubmitTime),
				strconv.Itoa(len(a.Responses)),
				yesNo(a.PassedChecks()),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Worker", "Assignment", "Status", "Submitted", "Answers", "Checks passed"},
			rows, 5,
		))
		if verbose {
			for _, a := range fr.Assignments {
				printResponses(out, a)
			}
		}
		fmt.Fprintln(out)
	}
}

func printResponses(out io.Writer, a survey.AssignmentResult) {
	fmt.Fprintf(out, "Worker %s\n", a.WorkerID)
	rows := make([][]string, 0, len(a.Responses))
	for _, r := range a.Responses {
		kind := string(r.Kind)
		if r.Padded {
			kind += " (repeat)"
		}
		rows = append(rows, []string{strconv.Itoa(r.Slot), kind, r.Choice, r.Role, r.File, r.Transcript})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Slot", "Kind", "Choice", "Role", "File", "Transcript"},
		rows, 1,
	))
	for _, ans := range a.Unmatched {
		fmt.Fprintf(out, "  unmatched field %s=%q\n", ans.QuestionIdentifier, ans.FreeText)
	}
}
