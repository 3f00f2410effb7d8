package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"data-mirror/feature/mirror"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for apply command
	dryRunApply bool
	yesConfirm  bool
)

// applyCmd computes the change set and applies it to the destination table.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the mirror change set to the destination table",
	Long: `Apply loads the source and destination datasets, applies the mapping
rules and executes the resulting inserts, deletes and updates.

Examples:
  # Report what would happen, change nothing
  apply --dry-run

  # Apply with interactive confirmation
  apply

  # Apply without prompting (non-interactive)
  apply --yes`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&dryRunApply, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	applyCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	svc, l, err := buildMirrorService()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if dryRunApply {
		changes, _, err := svc.Apply(ctx, mirror.ApplyOptions{DryRun: true})
		if err != nil {
			return fmt.Errorf("failed to plan: %w", err)
		}
		printChangeReport(l, changes)
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	// Always plan first so the confirmation prompt shows what is at stake.
	changes, err := svc.Plan(ctx)
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	printChangeReport(l, changes)

	total := changes.Summary.Inserted + changes.Summary.Deleted + changes.Summary.Updated
	if total == 0 {
		l.Info("Nothing to apply.")
		return nil
	}

	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	l.Info("Applying changes...")
	_, result, err := svc.Apply(ctx, mirror.ApplyOptions{Confirmed: true})
	if err != nil {
		return fmt.Errorf("failed to apply: %w", err)
	}

	l.Info("Successfully applied changes",
		zap.Int("inserts", len(result.Inserts)),
		zap.Int("deletes", len(result.Deletes)),
		zap.Int("updates", len(result.Updates)),
	)

	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
