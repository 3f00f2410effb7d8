package cmd

import (
	"fmt"

	"data-mirror/core/config"
	"data-mirror/core/database"
	"data-mirror/core/engine"
	"data-mirror/core/logger"
	"data-mirror/core/storage"
	"data-mirror/feature/mirror"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// planCmd computes and reports the change set without applying anything.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the mirror change set (report only)",
	Long: `Plan loads the source and destination datasets, applies the mapping
rules and reports what an apply would do. Nothing is modified.`,
	RunE: runPlan,
}

func init() {
	RootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	svc, l, err := buildMirrorService()
	if err != nil {
		return err
	}

	l.Info("Planning mirror run")

	changes, err := svc.Plan(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	printChangeReport(l, changes)
	return nil
}

// buildMirrorService wires config, logger, database and storage into a
// mirror service for CLI commands.
func buildMirrorService() (*mirror.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	svc := mirror.NewService(db, client, cfg.Storage.Bucket, cfg.Mirror, l)
	return svc, l, nil
}

// printChangeReport prints a formatted change set report using logger.
func printChangeReport(l *zap.Logger, changes *engine.ChangeSet) {
	s := changes.Summary

	l.Info("Mirror report",
		zap.Int("source_rows", s.SourceRows),
		zap.Int("destination_rows", s.DestinationRows),
		zap.Int("inserted", s.Inserted),
		zap.Int("deleted", s.Deleted),
		zap.Int("updated", s.Updated),
		zap.Int("unchanged", s.Unchanged),
		zap.Int("duplicate_keys", s.DuplicateKeys),
	)

	// Show a sample of planned changes (max 5 per category for logger)
	const maxShow = 5

	for i, in := range changes.Inserted {
		if i >= maxShow {
			l.Info("Additional inserts not shown", zap.Int("count", len(changes.Inserted)-maxShow))
			break
		}
		l.Info("Planned insert", zap.Any("row", in.Payload()))
	}

	for i, del := range changes.Deleted {
		if i >= maxShow {
			l.Info("Additional deletes not shown", zap.Int("count", len(changes.Deleted)-maxShow))
			break
		}
		l.Info("Planned delete", zap.Any("row", del))
	}

	for i, up := range changes.Updated {
		if i >= maxShow {
			l.Info("Additional updates not shown", zap.Int("count", len(changes.Updated)-maxShow))
			break
		}
		l.Info("Planned update",
			zap.Any("row", up.Row),
			zap.Any("deltas", up.Deltas),
		)
	}
}
