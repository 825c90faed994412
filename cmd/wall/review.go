package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
	"github.com/Veraticus/the-wall-must-hold/internal/tui"
)

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review deposits the classifier was unsure about",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			userID := a.cfg.Profile.UserID
			queue, err := a.engine.ReviewQueue(ctx, userID)
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Nothing to review"))
				return nil
			}

			employers, err := a.store.ListEmployers(ctx, userID)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(employers))
			for _, e := range employers {
				names[e.ID] = e.Name
			}

			final, err := tui.RunReview(ctx, a.engine, queue, names)
			if err != nil {
				return err
			}

			salary, other, skipped := final.Summary()
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Reviewed: %d salary, %d other, %d skipped", salary, other, skipped)))
			return nil
		},
	}
}
