package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
	"github.com/Veraticus/the-wall-must-hold/internal/common"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
)

func thresholdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Inspect and manage income thresholds",
	}
	cmd.PersistentFlags().Int("year", time.Now().Year(), "threshold year")

	cmd.AddCommand(thresholdsListCmd())
	cmd.AddCommand(thresholdsSetCmd())
	cmd.AddCommand(thresholdsActivateCmd())
	cmd.AddCommand(thresholdsHealthCmd())

	return cmd
}

func thresholdsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the thresholds in effect for a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, _ := cmd.Flags().GetInt("year")
			kind, _ := cmd.Flags().GetString("kind")
			all, _ := cmd.Flags().GetBool("all")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var defs []model.ThresholdDefinition
			switch {
			case all:
				defs, err = a.store.ListThresholds(cmd.Context(), year)
				if err != nil {
					return err
				}
			case kind != "":
				k := model.ThresholdKind(kind)
				if !k.Valid() {
					return common.NewUserError(fmt.Sprintf("unknown kind %q (tax or social)", kind), common.ErrInvalidConfig)
				}
				defs = a.thresholds.ThresholdsByKind(cmd.Context(), k, year)
			default:
				for _, def := range a.engine.ActiveThresholds(cmd.Context(), year) {
					defs = append(defs, def)
				}
				threshold.SortByAmount(defs)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Thresholds for %d", year)))
			fmt.Fprintln(out, cli.TableHeaderStyle.Render(fmt.Sprintf("%-26s %-7s %-12s %-7s %s", "Key", "Kind", "Amount", "Active", "Label")))
			for _, def := range defs {
				fmt.Fprintln(out, cli.TableCellStyle.Render(fmt.Sprintf("%-26s %-7s %-12s %-7t %s",
					def.Key, def.Kind, cli.FormatYen(def.Amount), def.Active, def.Label)))
			}
			return nil
		},
	}
	cmd.Flags().String("kind", "", "only show thresholds of this kind (tax, social)")
	cmd.Flags().Bool("all", false, "show every stored row, including inactive ones")
	return cmd
}

func thresholdsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY AMOUNT",
		Short: "Create or update a stored threshold",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			kind, _ := cmd.Flags().GetString("kind")
			label, _ := cmd.Flags().GetString("label")
			description, _ := cmd.Flags().GetString("description")
			inactive, _ := cmd.Flags().GetBool("inactive")

			key := strings.ToUpper(strings.TrimSpace(args[0]))
			amount, err := strconv.ParseInt(strings.ReplaceAll(args[1], ",", ""), 10, 64)
			if err != nil || amount < 0 {
				return common.NewUserError(fmt.Sprintf("amount must be a non-negative number of yen, got %q", args[1]), common.ErrInvalidConfig)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			def := model.ThresholdDefinition{
				Key:         key,
				Kind:        model.ThresholdKind(kind),
				Label:       label,
				Description: description,
				Amount:      amount,
				Year:        year,
				Active:      !inactive,
			}
			if builtin, ok := threshold.Builtin(year)[key]; ok {
				if def.Kind == "" {
					def.Kind = builtin.Kind
				}
				if def.Label == "" {
					def.Label = builtin.Label
				}
			}
			if def.Label == "" {
				def.Label = key
			}

			if err := a.store.UpsertThreshold(cmd.Context(), &def); err != nil {
				return err
			}
			a.thresholds.Invalidate()

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s for %d set to %s", key, year, cli.FormatYen(amount))))
			return nil
		},
	}
	cmd.Flags().String("kind", "", "tax or social (defaults to the built-in kind)")
	cmd.Flags().String("label", "", "display label")
	cmd.Flags().String("description", "", "description")
	cmd.Flags().Bool("inactive", false, "store the threshold as inactive")
	return cmd
}

func thresholdsActivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate KEY...",
		Short: "Make exactly these thresholds active for the year",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			yes, _ := cmd.Flags().GetBool("yes")
			ctx := cmd.Context()

			keys := make([]string, len(args))
			for i, arg := range args {
				keys[i] = strings.ToUpper(strings.TrimSpace(arg))
			}

			if !yes {
				reader := cli.NewNonBlockingReader(cmd.InOrStdin())
				ok, err := cli.Confirm(ctx, reader, cmd.OutOrStdout(),
					fmt.Sprintf("Deactivate all other %d thresholds and activate %s?", year, strings.Join(keys, ", ")))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing changed"))
					return nil
				}
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.thresholds.Activate(ctx, year, keys)
			if err != nil {
				return err
			}
			if n < len(keys) {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("Only %d of %d keys exist for %d", n, len(keys), year)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Activated %d thresholds for %d", n, year)))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func thresholdsHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check which tier is serving thresholds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			h := a.thresholds.Health(cmd.Context())
			msg := fmt.Sprintf("%s: %d thresholds from %s (checked %s)",
				h.Status, h.ThresholdCount, h.Source, h.CheckedAt.Format(time.RFC3339))

			out := cmd.OutOrStdout()
			if h.Status == threshold.StatusHealthy {
				fmt.Fprintln(out, cli.FormatSuccess(msg))
			} else {
				fmt.Fprintln(out, cli.FormatWarning(msg))
			}
			return nil
		},
	}
}
