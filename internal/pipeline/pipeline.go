// Package pipeline runs one spend analysis from workbook to report.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/spend-insights/internal/analysis"
	"github.com/dvloznov/spend-insights/internal/domain"
	"github.com/dvloznov/spend-insights/internal/logger"
)

// PipelineStep represents a single step in the analysis pipeline.
type PipelineStep interface {
	Name() string
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	RunID      string
	StartedAt  time.Time
	SourcePath string

	Table     domain.Table
	Results   *analysis.Results
	Findings  []analysis.Finding
	Narrative string

	ReportName     string
	ReportLocation string

	Headline analysis.Headline
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Execute runs all steps sequentially and stops at the first failure.
// The step error is wrapped, so errors.Is and errors.As still see it.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d (%s) not started: %w", i+1, step.Name(), err)
		}

		start := time.Now()
		log.Debug().Int("step", i+1).Str("name", step.Name()).Msg("step started")
		if err := step.Execute(ctx, state); err != nil {
			log.Error().Err(err).Int("step", i+1).Str("name", step.Name()).Msg("step failed")
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, step.Name(), err)
		}
		log.Debug().Int("step", i+1).Str("name", step.Name()).Dur("took", time.Since(start)).Msg("step finished")
	}
	return nil
}
