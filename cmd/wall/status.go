package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which wall applies and how close you are to it",
		Long: `Decide the governing wall from your profile (user.date_of_birth,
user.is_student, user.insurance, user.future_self_insurance_date) and show
progress toward it. Income defaults to this year's taxable deposits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var income *int64
			if cmd.Flags().Changed("income") {
				v, _ := cmd.Flags().GetInt64("income")
				income = &v
			}

			st, err := a.engine.Status(cmd.Context(), a.cfg.Profile.UserID, a.cfg.Profile.Facts(), income)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := "entered"
			if st.FromDeposits {
				source = "from deposits"
			}
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d income: %s (%s)", st.AsOf.Year(), cli.FormatYen(st.Income), source)))
			fmt.Fprintln(out, cli.RenderSnapshot(st.Snapshot))
			if st.Resolution.IsIndependentMode {
				fmt.Fprintln(out, cli.FormatInfo("You carry your own health insurance; the social insurance wall applies."))
			}
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("Resident tax wall: %s", cli.FormatManYen(st.Resolution.ResidentWall))))

			if all {
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.RenderOverview(st.Overview, st.Primary))
			}
			return nil
		},
	}
	cmd.Flags().Int64("income", 0, "year-to-date income in yen (default: sum of taxable deposits)")
	cmd.Flags().Bool("all", false, "also show progress toward every active wall")
	return cmd
}
