package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/fuyou"
)

func fuyouCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuyou",
		Short: "Look up the dependency bracket for an estimated annual income",
		Long: `Evaluate the legacy 扶養 decision table from a few answers.

Example:
  wall fuyou --type student --income 1200000 --student --parent-insurance`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userType, _ := cmd.Flags().GetString("type")
			income, _ := cmd.Flags().GetInt64("income")
			parent, _ := cmd.Flags().GetBool("parent-insurance")
			weekly, _ := cmd.Flags().GetBool("weekly-over-20")
			monthly, _ := cmd.Flags().GetBool("monthly-over-88k")
			student, _ := cmd.Flags().GetBool("student")

			ut := fuyou.UserType(userType)
			switch ut {
			case fuyou.UserStudent, fuyou.UserGeneral, fuyou.UserSpouse:
			default:
				return common.NewUserError(
					fmt.Sprintf("unknown type %q (student, general or spouse)", userType),
					common.ErrInvalidConfig)
			}

			result := fuyou.Classify(fuyou.Input{
				UserType:          ut,
				EstimatedIncome:   income,
				InParentInsurance: parent,
				WeeklyHoursOver20: weekly,
				MonthlyOver88k:    monthly,
				IsStudent:         student || ut == fuyou.UserStudent,
			})
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderFuyou(result))
			return nil
		},
	}
	cmd.Flags().String("type", string(fuyou.UserGeneral), "student, general or spouse")
	cmd.Flags().Int64("income", 0, "estimated annual income in yen")
	cmd.Flags().Bool("parent-insurance", false, "covered by a parent's health insurance")
	cmd.Flags().Bool("weekly-over-20", false, "working more than 20 hours a week")
	cmd.Flags().Bool("monthly-over-88k", false, "earning more than 88,000 yen a month")
	cmd.Flags().Bool("student", false, "currently a student")
	return cmd
}
