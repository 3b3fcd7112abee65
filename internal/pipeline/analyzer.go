package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/spend-insights/internal/analysis"
	"github.com/dvloznov/spend-insights/internal/domain"
	"github.com/dvloznov/spend-insights/internal/logger"
	"github.com/dvloznov/spend-insights/internal/narrative"
	"github.com/dvloznov/spend-insights/internal/report"
	"github.com/dvloznov/spend-insights/internal/spreadsheet"
	"github.com/dvloznov/spend-insights/internal/storage"
)

// ErrorKind classifies a failed run for the caller.
type ErrorKind string

const (
	KindSchema          ErrorKind = "schema"
	KindDataIntegrity   ErrorKind = "data_integrity"
	KindUnsupportedFile ErrorKind = "unsupported_file"
	KindInternal        ErrorKind = "internal"
)

// Classify maps err onto an ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, domain.ErrSchema):
		return KindSchema
	case errors.Is(err, domain.ErrDataIntegrity):
		return KindDataIntegrity
	case errors.Is(err, domain.ErrUnsupportedFile):
		return KindUnsupportedFile
	default:
		return KindInternal
	}
}

// Result is the JSON summary returned for one run.
type Result struct {
	Success     bool               `json:"success"`
	RunID       string             `json:"runId,omitempty"`
	Metrics     *analysis.Metrics  `json:"metrics,omitempty"`
	AIInsights  string             `json:"aiInsights,omitempty"`
	TopVendors  string             `json:"topVendors,omitempty"`
	TopSpenders string             `json:"topSpenders,omitempty"`
	Findings    []analysis.Finding `json:"findings,omitempty"`
	ReportPath  string             `json:"reportPath,omitempty"`
	ReportName  string             `json:"reportName,omitempty"`

	Error string    `json:"error,omitempty"`
	Kind  ErrorKind `json:"kind,omitempty"`
}

// FailureResult reports err to the caller.
func FailureResult(err error) *Result {
	return &Result{Success: false, Error: err.Error(), Kind: Classify(err)}
}

// Options configure an Analyzer. Zero values fall back to defaults: the
// template sheet, the built-in catalog, a local store in the default upload
// directory and no model client.
type Options struct {
	Sheet   string
	Catalog *analysis.Catalog
	Model   narrative.ModelClient
	Store   storage.ReportStore
	Now     func() time.Time
	NewID   func() string
}

// Analyzer runs the full pipeline for a workbook.
type Analyzer struct {
	pipeline *Pipeline
	now      func() time.Time
	newID    func() string
}

// NewAnalyzer builds the standard pipeline from opts.
func NewAnalyzer(opts Options) *Analyzer {
	catalog := analysis.DefaultCatalog()
	if opts.Catalog != nil {
		catalog = *opts.Catalog
	}
	store := opts.Store
	if store == nil {
		store = storage.NewLocalStore(storage.DefaultUploadDir)
	}
	a := &Analyzer{now: opts.Now, newID: opts.NewID}
	if a.now == nil {
		a.now = time.Now
	}
	if a.newID == nil {
		a.newID = uuid.NewString
	}

	a.pipeline = NewPipeline(
		&LoadWorkbookStep{Loader: spreadsheet.NewLoader(opts.Sheet)},
		&ValidateColumnsStep{Catalog: catalog},
		&CategorizeStep{Catalog: catalog},
		&FindingsStep{},
		&NarrativeStep{Synthesizer: narrative.NewSynthesizer(opts.Model)},
		&MetricsStep{},
		&ReportStep{Assembler: report.NewAssembler(), Store: store},
	)
	return a
}

// Steps returns the pipeline step names.
func (a *Analyzer) Steps() []string { return a.pipeline.Steps() }

// Analyze runs the pipeline on the workbook at sourcePath. A returned error
// means no report was written.
func (a *Analyzer) Analyze(ctx context.Context, sourcePath string) (*Result, error) {
	state := &PipelineState{
		RunID:      a.newID(),
		StartedAt:  a.now(),
		SourcePath: sourcePath,
	}

	log := logger.FromContext(ctx).With().Str("run_id", state.RunID).Logger()
	ctx = logger.WithContext(ctx, log)
	log.Info().Str("source", sourcePath).Msg("analysis started")

	if err := a.pipeline.Execute(ctx, state); err != nil {
		log.Error().Err(err).Str("kind", string(Classify(err))).Msg("analysis failed")
		return nil, err
	}

	log.Info().Str("report", state.ReportLocation).Dur("took", a.now().Sub(state.StartedAt)).Msg("analysis finished")

	metrics := state.Headline.Metrics
	return &Result{
		Success:     true,
		RunID:       state.RunID,
		Metrics:     &metrics,
		AIInsights:  state.Narrative,
		TopVendors:  state.Headline.TopVendors,
		TopSpenders: state.Headline.TopSpenders,
		Findings:    state.Findings,
		ReportPath:  state.ReportLocation,
		ReportName:  state.ReportName,
	}, nil
}
