package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

func employersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employers",
		Aliases: []string{"jobs"},
		Short:   "Manage the employers deposits are matched against",
	}
	cmd.AddCommand(employersAddCmd())
	cmd.AddCommand(employersListCmd())
	cmd.AddCommand(employersRemoveCmd())
	return cmd
}

func employersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register an employer",
		Long: `Register an employer by the name that appears on your bank statement.

Examples:
  wall employers add "カフェ・モカ" --hourly 1200
  wall employers add "株式会社ブックス" --monthly 80000 --primary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hourly, _ := cmd.Flags().GetInt64("hourly")
			monthly, _ := cmd.Flags().GetInt64("monthly")
			primary, _ := cmd.Flags().GetBool("primary")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			e := &model.Employer{
				ID:        uuid.NewString(),
				UserID:    a.cfg.Profile.UserID,
				Name:      args[0],
				IsPrimary: primary,
				CreatedAt: time.Now(),
			}
			if hourly > 0 {
				e.HourlyWage = &hourly
			}
			if monthly > 0 {
				e.MonthlySalary = &monthly
			}

			if err := a.store.SaveEmployer(cmd.Context(), e); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (%s)", e.Name, e.ID)))
			return nil
		},
	}
	cmd.Flags().Int64("hourly", 0, "hourly wage in yen")
	cmd.Flags().Int64("monthly", 0, "monthly salary in yen")
	cmd.Flags().Bool("primary", false, "mark as the primary employer")
	return cmd
}

func employersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered employers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			employers, err := a.store.ListEmployers(cmd.Context(), a.cfg.Profile.UserID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(employers) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No employers registered. Add one with: wall employers add NAME"))
				return nil
			}
			for _, e := range employers {
				line := e.Name
				if e.IsPrimary {
					line += " " + cli.SuccessStyle.Render("(primary)")
				}
				if e.HourlyWage != nil {
					line += fmt.Sprintf("  %s/h", cli.FormatYen(*e.HourlyWage))
				}
				if e.MonthlySalary != nil {
					line += fmt.Sprintf("  %s/month", cli.FormatYen(*e.MonthlySalary))
				}
				fmt.Fprintln(out, line+"  "+cli.SubtleStyle.Render(e.ID))
			}
			return nil
		},
	}
}

func employersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an employer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.DeleteEmployer(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Removed "+args[0]))
			return nil
		},
	}
}
