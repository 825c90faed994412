package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/deposit"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify DESCRIPTION",
		Short: "Classify a single deposit without storing it",
		Long: `Run the deposit classifier against your registered employers and
stored salary history.

Example:
  wall classify "キユウヨ カフエモカ" --amount 85000 --date 2025-07-25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, _ := cmd.Flags().GetInt64("amount")
			dateStr, _ := cmd.Flags().GetString("date")

			date := time.Now()
			if dateStr != "" {
				d, err := time.Parse("2006-01-02", dateStr)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("date must be YYYY-MM-DD, got %q", dateStr), err)
				}
				date = d
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.engine.ClassifyDeposit(cmd.Context(), deposit.Input{
				UserID:      a.cfg.Profile.UserID,
				Amount:      amount,
				Description: args[0],
				Date:        date,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			label := fmt.Sprintf("%s (confidence %.2f)", result.Type, result.Confidence)
			switch result.Type {
			case model.DepositSalary:
				fmt.Fprintln(out, cli.FormatSuccess(label))
			case model.DepositNeedsReview:
				fmt.Fprintln(out, cli.FormatWarning(label))
			default:
				fmt.Fprintln(out, cli.FormatInfo(label))
			}
			fmt.Fprintln(out, "  "+result.Reason)
			if result.EmployerID != "" {
				fmt.Fprintln(out, "  employer: "+result.EmployerID)
			}
			fmt.Fprintf(out, "  taxable: %t\n", result.IsTaxable)
			return nil
		},
	}
	cmd.Flags().Int64("amount", 0, "deposit amount in yen")
	cmd.Flags().String("date", "", "deposit date (YYYY-MM-DD, default today)")
	return cmd
}
