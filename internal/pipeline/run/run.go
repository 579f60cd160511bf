// Package run sequences the pipeline stages: each stage reads its input CSVs,
// transforms, writes its output CSVs, and optionally archives them. Stages
// stay independently invocable so the per-stage cmds and the combined
// srtpipeline cmd share one implementation.
package run

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"time"

	"srtingest/internal/blob"
	"srtingest/internal/metrics"
	"srtingest/internal/pipeline"
	"srtingest/internal/pipeline/compliance"
	"srtingest/internal/pipeline/merge"
	"srtingest/internal/pipeline/source"
	"srtingest/internal/pipeline/tables"
	"srtingest/internal/table"
	"srtingest/internal/workbook"
)

// Stage names used for metrics and logging.
const (
	StageMerge      = "merge"
	StageTables     = "tables"
	StageCompliance = "compliance"
	StageSource     = "source"
)

// Runner executes pipeline stages against one configuration.
type Runner struct {
	Config  pipeline.Config
	Metrics metrics.Recorder
	// Archive receives stage output copies when configured; nil disables
	// archiving regardless of config.
	Archive blob.Store
	Logf    func(format string, args ...any)

	runID string
}

// New constructs a Runner with a fresh run identifier, a no-op metrics
// recorder and stderr logging. Callers override fields before running.
func New(cfg pipeline.Config) *Runner {
	return &Runner{
		Config:  cfg,
		Metrics: metrics.NopRecorder{},
		Logf:    log.Printf,
		runID:   newRunID(),
	}
}

// NewFromEnv builds a Runner with the archive store opened from the
// environment when archiving is enabled.
func NewFromEnv(ctx context.Context, cfg pipeline.Config) (*Runner, error) {
	r := New(cfg)
	if cfg.Archive.Enabled {
		store, err := blob.Open(ctx)
		if err != nil {
			return nil, err
		}
		r.Archive = store
	}
	return r, nil
}

// RunID identifies this run in archive keys.
func (r *Runner) RunID() string { return r.runID }

// RunAll executes the four stages in order, stopping at the first failure.
func (r *Runner) RunAll(ctx context.Context) error {
	for _, stage := range []func(context.Context) error{
		r.MergeStage, r.TablesStage, r.ComplianceStage, r.SourceStage,
	} {
		if err := stage(ctx); err != nil {
			return err
		}
	}
	return nil
}

// MergeStage reads the workbook and writes the combined long-format table.
func (r *Runner) MergeStage(ctx context.Context) error {
	started := time.Now()
	rows, err := r.mergeStage(ctx)
	r.observe(StageMerge, err == nil, rows, started)
	return err
}

func (r *Runner) mergeStage(ctx context.Context) (int, error) {
	wb, err := workbook.OpenCSVDir(r.Config.Workbook)
	if err != nil {
		return 0, err
	}
	result, err := merge.Run(wb, r.Config.Sheets, r.Config.IdentifierColumns)
	if err != nil {
		return 0, err
	}
	r.warn(StageMerge, result.Warnings)
	if len(result.SheetsMerged) == 0 {
		return 0, fmt.Errorf("no sheets merged from workbook %s", r.Config.Workbook)
	}
	out := r.Config.OutputPath(pipeline.FileCombinedLong)
	if err := result.Long.WriteFile(out); err != nil {
		return 0, err
	}
	r.Logf("%s: %d sheets merged, %d long rows written to %s", StageMerge, len(result.SheetsMerged), result.Long.Len(), out)
	return result.Long.Len(), r.archive(ctx, out)
}

// TablesStage derives the patient, definition and value tables from the
// combined long-format file.
func (r *Runner) TablesStage(ctx context.Context) error {
	started := time.Now()
	rows, err := r.tablesStage(ctx)
	r.observe(StageTables, err == nil, rows, started)
	return err
}

func (r *Runner) tablesStage(ctx context.Context) (int, error) {
	long, err := table.ReadFile(r.Config.OutputPath(pipeline.FileCombinedLong),
		pipeline.ColRecordID, pipeline.ColFieldName, pipeline.ColFieldValue)
	if err != nil {
		return 0, err
	}
	result, err := tables.Run(long, r.Config.IdentifierColumns)
	if err != nil {
		return 0, err
	}
	r.warn(StageTables, result.Warnings)
	outputs := map[string]*table.Table{
		pipeline.FilePatients:    result.Patients,
		pipeline.FileFieldDefs:   result.Definitions,
		pipeline.FileFieldValues: result.Values,
	}
	paths := make([]string, 0, len(outputs))
	for _, name := range []string{pipeline.FilePatients, pipeline.FileFieldDefs, pipeline.FileFieldValues} {
		path := r.Config.OutputPath(name)
		if err := outputs[name].WriteFile(path); err != nil {
			return 0, err
		}
		paths = append(paths, path)
	}
	r.Logf("%s: %d patients, %d fields, %d value rows", StageTables, result.Patients.Len(), result.Definitions.Len(), result.Values.Len())
	return result.Values.Len(), r.archive(ctx, paths...)
}

// ComplianceStage sanitizes field names and maps types onto the SRT
// vocabulary.
func (r *Runner) ComplianceStage(ctx context.Context) error {
	started := time.Now()
	rows, err := r.complianceStage(ctx)
	r.observe(StageCompliance, err == nil, rows, started)
	return err
}

func (r *Runner) complianceStage(ctx context.Context) (int, error) {
	definitions, err := table.ReadFile(r.Config.OutputPath(pipeline.FileFieldDefs),
		pipeline.ColFieldName, pipeline.ColDataType, pipeline.ColDescription)
	if err != nil {
		return 0, err
	}
	values, err := table.ReadFile(r.Config.OutputPath(pipeline.FileFieldValues),
		pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue)
	if err != nil {
		return 0, err
	}
	result, err := compliance.Run(definitions, values)
	if err != nil {
		return 0, err
	}
	defsOut := r.Config.OutputPath(pipeline.FileCompliantDefs)
	valuesOut := r.Config.OutputPath(pipeline.FileCompliantValues)
	if err := result.Definitions.WriteFile(defsOut); err != nil {
		return 0, err
	}
	if err := result.Values.WriteFile(valuesOut); err != nil {
		return 0, err
	}
	r.Logf("%s: %d definitions, %d value rows made SRT-compliant", StageCompliance, result.Definitions.Len(), result.Values.Len())
	return result.Values.Len(), r.archive(ctx, defsOut, valuesOut)
}

// SourceStage appends the provenance column and writes the final table.
func (r *Runner) SourceStage(ctx context.Context) error {
	started := time.Now()
	rows, err := r.sourceStage(ctx)
	r.observe(StageSource, err == nil, rows, started)
	return err
}

func (r *Runner) sourceStage(ctx context.Context) (int, error) {
	values, err := table.ReadFile(r.Config.OutputPath(pipeline.FileCompliantValues),
		pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue)
	if err != nil {
		return 0, err
	}
	tagged, err := source.Tag(values, r.Config.SourceLabel)
	if err != nil {
		return 0, err
	}
	out := r.Config.OutputPath(pipeline.FileSourcedValues)
	if err := tagged.WriteFile(out); err != nil {
		return 0, err
	}
	r.Logf("%s: %d rows tagged with source %q", StageSource, tagged.Len(), r.Config.SourceLabel)
	return tagged.Len(), r.archive(ctx, out)
}

func (r *Runner) observe(stage string, success bool, rows int, started time.Time) {
	if r.Metrics != nil {
		r.Metrics.ObserveStage(stage, success, rows, time.Since(started))
	}
}

func (r *Runner) warn(stage string, warnings []string) {
	for _, w := range warnings {
		r.Logf("%s: warning: %s", stage, w)
	}
}

func (r *Runner) archive(ctx context.Context, paths ...string) error {
	if r.Archive == nil || !r.Config.Archive.Enabled {
		return nil
	}
	infos, err := blob.ArchiveFiles(ctx, r.Archive, r.Config.Archive.Prefix, r.runID, paths...)
	if err != nil {
		return err
	}
	for _, info := range infos {
		r.Logf("archived %s (%d bytes)", info.Key, info.Size)
	}
	return nil
}

func newRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s-%x", time.Now().UTC().Format("20060102T150405Z"), b[:4])
}
