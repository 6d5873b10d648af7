package main

import (
	"strings"

	"github.com/spf13/cobra"

	"abxsurvey/internal/survey"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "publish <survey-id>",
		Short: "Create HITs for the unpublished forms of a stored survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withService(serviceOptions{market: true}, func(svc *survey.Service) error {
				return publishSurvey(cmd, svc, id, assumeYes)
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Publish without asking for confirmation")
	return cmd
}
