package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-wall-must-hold/internal/cli"
	"github.com/Veraticus/the-wall-must-hold/internal/engine"
	"github.com/Veraticus/the-wall-must-hold/internal/model"
	"github.com/Veraticus/the-wall-must-hold/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Classify and store deposits from OFX/QFX files",
		Long: `Import incoming bank transfers from OFX or QFX files exported from your bank.
Debits are ignored. Each credit is classified and stored; files can be
imported again safely since already-stored deposits are skipped.

Examples:
  wall import-ofx ~/Downloads/statement_2025_07.ofx
  wall import-ofx ~/Downloads/*.qfx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Parse and list deposits without saving")
	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	interrupts := cli.NewInterruptHandler(out, "Deposits saved so far are kept. Run the import again to continue.")
	ctx := interrupts.HandleInterrupts(cmd.Context())

	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var deposits []model.Deposit

	for _, path := range files {
		f, err := os.Open(path) //nolint:gosec // user-supplied import path
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}
		stmt, err := parser.ParseFile(ctx, f, a.cfg.Profile.UserID)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, d := range stmt.Deposits {
			if seen[d.Hash] {
				continue
			}
			seen[d.Hash] = true
			deposits = append(deposits, d)
			added++
		}
		slog.Info("Processed file",
			"file", filepath.Base(path),
			"deposits", len(stmt.Deposits),
			"added", added,
			"accounts", stmt.Accounts)
	}

	if len(deposits) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No deposits found"))
		return nil
	}

	if dryRun {
		for _, d := range deposits {
			fmt.Fprintf(out, "%s  %12s  %s\n", d.Date.Format("2006-01-02"), cli.FormatYen(d.Amount), d.Description)
		}
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d deposits, nothing saved", len(deposits))))
		return nil
	}

	progress := cli.NewImportProgress(out, len(deposits))
	summary, err := a.engine.Ingest(ctx, a.cfg.Profile.UserID, deposits, func(o engine.IngestOutcome) {
		switch o {
		case engine.OutcomeSaved:
			progress.Saved()
		case engine.OutcomeDuplicate:
			progress.Duplicate()
		default:
			progress.Failed()
		}
	})
	progress.Finish()
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return err
	}

	if summary.NeedsReview > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d deposits need review. Run: wall review", summary.NeedsReview)))
	}
	return nil
}

func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}
