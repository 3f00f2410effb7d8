package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"data-mirror/core/database"
	"data-mirror/core/engine"
	"data-mirror/core/storage"
	"data-mirror/feature/dataset"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service runs the mirror job.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	cfg    Config
	logger *zap.Logger
}

// NewService creates a new mirror service.
func NewService(db *gorm.DB, client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		client: client,
		bucket: bucket,
		cfg:    cfg,
		logger: logger,
	}
}

// ApplyOptions control the Apply run.
type ApplyOptions struct {
	// DryRun reports the change set without executing any mutation.
	DryRun bool

	// Confirmed authorizes mutations. Without it Apply refuses to run
	// unless DryRun is set.
	Confirmed bool
}

// ApplyReport is the outcome of one apply run.
type ApplyReport struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// DryRun records whether mutations were skipped.
	DryRun bool `json:"dry_run"`

	// Started is the run start time.
	Started time.Time `json:"started"`

	// Summary is the change set summary for the run.
	Summary engine.Summary `json:"summary"`
}

// Plan computes the change set without applying anything.
func (s *Service) Plan(ctx context.Context) (*engine.ChangeSet, error) {
	eng, err := s.buildEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.GetChanges(ctx)
}

// Apply computes the change set and executes it against the destination
// table. A non-confirmed, non-dry-run call is rejected before any dataset is
// touched.
func (s *Service) Apply(ctx context.Context, opts ApplyOptions) (*engine.ChangeSet, *engine.SyncResult, error) {
	if !opts.DryRun && !opts.Confirmed {
		return nil, nil, fmt.Errorf("apply requires confirmation, pass dry-run or confirm")
	}

	runID := uuid.NewString()
	started := time.Now()
	l := s.logger.With(zap.String("run_id", runID))

	eng, err := s.buildEngine(ctx)
	if err != nil {
		return nil, nil, err
	}

	changes, err := eng.GetChanges(ctx)
	if err != nil {
		return nil, nil, err
	}

	l.Info("Mirror plan computed",
		zap.Int("inserted", changes.Summary.Inserted),
		zap.Int("deleted", changes.Summary.Deleted),
		zap.Int("updated", changes.Summary.Updated),
		zap.Int("unchanged", changes.Summary.Unchanged),
		zap.Int("duplicate_keys", changes.Summary.DuplicateKeys),
	)

	if opts.DryRun {
		l.Info("Dry-run mode: no changes applied")
		return changes, nil, nil
	}

	result, err := eng.Apply(ctx, changes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply changes: %w", err)
	}

	// Destination changed; the next plan must reload it.
	dataset.Invalidate(s.destProvider().Name())

	l.Info("Mirror applied",
		zap.Int("inserts", len(result.Inserts)),
		zap.Int("deletes", len(result.Deletes)),
		zap.Int("updates", len(result.Updates)),
	)

	if s.cfg.ReportPrefix != "" {
		report := ApplyReport{
			RunID:   runID,
			DryRun:  false,
			Started: started,
			Summary: changes.Summary,
		}
		if err := s.uploadReport(ctx, report); err != nil {
			// Report upload is best effort and never fails the run.
			l.Warn("Failed to upload apply report", zap.Error(err))
		}
	}

	return changes, result, nil
}

// buildEngine loads the rules, validates the destination schema, loads both
// datasets concurrently and assembles the engine. The apply callbacks are
// always wired; Plan and dry-run simply never invoke them.
func (s *Service) buildEngine(ctx context.Context) (*engine.Engine, error) {
	if s.db == nil {
		return nil, fmt.Errorf("mirror requires a database connection")
	}

	rules, err := LoadRules(ctx, s.client, s.bucket, s.cfg.RulesObject)
	if err != nil {
		return nil, err
	}

	if err := s.validateDestColumns(rules); err != nil {
		return nil, err
	}

	ttl := time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	srcProvider := s.sourceProvider()
	dstProvider := s.destProvider()

	var (
		source []engine.Record
		dest   []engine.Record
		srcErr error
		dstErr error
		wg     sync.WaitGroup
	)

	// Load both datasets concurrently
	wg.Add(2)

	go func() {
		defer wg.Done()
		source, srcErr = dataset.LoadCached(ctx, srcProvider, ttl)
	}()

	go func() {
		defer wg.Done()
		dest, dstErr = dataset.LoadCached(ctx, dstProvider, ttl)
	}()

	wg.Wait()

	if srcErr != nil {
		return nil, fmt.Errorf("failed to load source: %w", srcErr)
	}
	if dstErr != nil {
		return nil, fmt.Errorf("failed to load destination: %w", dstErr)
	}

	eng, err := engine.New(engine.Options{
		Source:      source,
		Destination: dest,
		Mappings:    rules.Mappings(),
		Callbacks:   s.callbacks(rules),
	})
	if err != nil {
		return nil, err
	}

	return eng, nil
}

// validateDestColumns checks every rule's dest column against the live table
// schema, surfacing typos at plan time instead of silent nil matches.
func (s *Service) validateDestColumns(rules *RuleSet) error {
	columns, err := database.ColumnSet(s.db, s.cfg.DestTable)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", s.cfg.DestTable, err)
	}

	for _, col := range rules.DestColumns() {
		if _, ok := columns[col]; !ok {
			return fmt.Errorf("rule dest column %q does not exist in table %s", col, s.cfg.DestTable)
		}
	}
	return nil
}

// sourceProvider picks the configured source dataset provider.
func (s *Service) sourceProvider() dataset.Provider {
	if s.cfg.SourceObject != "" {
		return dataset.NewObject(s.client, s.bucket, s.cfg.SourceObject)
	}
	return dataset.NewTable(s.db, s.cfg.SourceTable)
}

// destProvider returns the destination table provider.
func (s *Service) destProvider() dataset.Provider {
	return dataset.NewTable(s.db, s.cfg.DestTable)
}

// uploadReport writes the apply report as JSON to storage.
func (s *Service) uploadReport(ctx context.Context, report ApplyReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	objectName := fmt.Sprintf("%s/%s.json", s.cfg.ReportPrefix, report.RunID)
	_, err = s.client.PutObject(
		ctx,
		s.bucket,
		objectName,
		io.NopCloser(bytes.NewReader(data)),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to write report %s: %w", objectName, err)
	}

	return nil
}
