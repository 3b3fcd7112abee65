package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/spend-insights/internal/analysis"
	"github.com/dvloznov/spend-insights/internal/logger"
	"github.com/dvloznov/spend-insights/internal/narrative"
	"github.com/dvloznov/spend-insights/internal/report"
	"github.com/dvloznov/spend-insights/internal/spreadsheet"
	"github.com/dvloznov/spend-insights/internal/storage"
)

// Step 1: LoadWorkbookStep reads the transaction sheet.
type LoadWorkbookStep struct {
	Loader *spreadsheet.Loader
}

func (s *LoadWorkbookStep) Name() string { return "load workbook" }

func (s *LoadWorkbookStep) Execute(ctx context.Context, state *PipelineState) error {
	table, err := s.Loader.Load(ctx, state.SourcePath)
	if err != nil {
		return err
	}
	state.Table = table
	log := logger.FromContext(ctx)
	log.Info().Int("rows", table.Len()).Str("source", state.SourcePath).Msg("workbook loaded")
	return nil
}

// Step 2: ValidateColumnsStep checks every column the catalog reads.
type ValidateColumnsStep struct {
	Catalog analysis.Catalog
}

func (s *ValidateColumnsStep) Name() string { return "validate columns" }

func (s *ValidateColumnsStep) Execute(ctx context.Context, state *PipelineState) error {
	return ValidateColumns(state.Table, s.Catalog)
}

// Step 3: CategorizeStep filters and aggregates every category.
type CategorizeStep struct {
	Catalog analysis.Catalog
}

func (s *CategorizeStep) Name() string { return "categorize" }

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	results, err := analysis.Categorize(ctx, state.Table, s.Catalog)
	if err != nil {
		return err
	}
	state.Results = results
	return nil
}

// Step 4: FindingsStep derives the statistical findings.
type FindingsStep struct{}

func (s *FindingsStep) Name() string { return "findings" }

func (s *FindingsStep) Execute(ctx context.Context, state *PipelineState) error {
	findings, err := analysis.GenerateFindings(state.Results)
	if err != nil {
		return err
	}
	state.Findings = findings
	log := logger.FromContext(ctx)
	log.Info().Int("findings", len(findings)).Msg("findings generated")
	return nil
}

// Step 5: NarrativeStep asks the model for the executive summary. It never
// fails; a failed call leaves a diagnostic string as the narrative.
type NarrativeStep struct {
	Synthesizer *narrative.Synthesizer
}

func (s *NarrativeStep) Name() string { return "narrative" }

func (s *NarrativeStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Narrative = s.Synthesizer.Synthesize(ctx, state.Findings)
	return nil
}

// Step 6: MetricsStep computes the caller-facing summary.
type MetricsStep struct{}

func (s *MetricsStep) Name() string { return "metrics" }

func (s *MetricsStep) Execute(ctx context.Context, state *PipelineState) error {
	headline, err := analysis.ComputeHeadline(state.Results)
	if err != nil {
		return err
	}
	state.Headline = headline
	return nil
}

// Step 7: ReportStep assembles the workbook and saves it. It runs last so a
// failed run never leaves a report behind.
type ReportStep struct {
	Assembler *report.Assembler
	Store     storage.ReportStore
}

func (s *ReportStep) Name() string { return "report" }

func (s *ReportStep) Execute(ctx context.Context, state *PipelineState) error {
	data, err := s.Assembler.Bytes(report.Input{
		Narrative: state.Narrative,
		Findings:  state.Findings,
		Results:   state.Results,
	})
	if err != nil {
		return err
	}

	name := report.FileName(state.StartedAt, state.RunID)
	location, err := s.Store.Save(ctx, name, data)
	if err != nil {
		return fmt.Errorf("save report %s: %w", name, err)
	}
	state.ReportName = name
	state.ReportLocation = location

	log := logger.FromContext(ctx)
	log.Info().Str("report", location).Int("bytes", len(data)).Msg("report written")
	return nil
}
