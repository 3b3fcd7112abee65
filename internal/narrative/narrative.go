// Package narrative turns statistical findings into an executive summary
// written by a hosted generative model.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/spend-insights/internal/analysis"
	"github.com/dvloznov/spend-insights/internal/logger"
)

// Failure classes reported by model clients.
var (
	ErrAuth              = errors.New("model authentication failed")
	ErrNetwork           = errors.New("model request failed")
	ErrMalformedResponse = errors.New("model returned no text")
)

// DiagnosticPrefix starts every narrative produced after a failed model call.
const DiagnosticPrefix = "Model call failed: "

// SkippedNarrative is used when no model client is configured.
const SkippedNarrative = "AI narrative generation was skipped for this run."

const diagnosticAdvice = "Please ensure your Google Cloud credentials are configured correctly " +
	"and you have access to the specified model in the selected region."

// ModelClient sends one prompt to a text model and returns its answer.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RenderFindings formats findings as "- label: text" lines.
func RenderFindings(findings []analysis.Finding) string {
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = fmt.Sprintf("- %s: %s", f.Label, f.Text)
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt wraps the rendered findings in the analyst instructions.
func BuildPrompt(block string) string {
	var b strings.Builder
	b.WriteString("You are an expert business analyst specializing in procurement and supplier consolidation ")
	b.WriteString("for Amazon Business. Your task is to synthesize the following statistical data points into a ")
	b.WriteString("concise, actionable executive summary for an Account Executive (AE) to present to their customer.\n\n")
	b.WriteString("Here is the statistical data summary:\n")
	b.WriteString("<data>\n")
	b.WriteString(block)
	b.WriteString("\n</data>\n\n")
	b.WriteString("Please create a compelling narrative from this data. The summary should be detailed and ")
	b.WriteString("structured into bullet points, highlighting the biggest opportunities (e.g., spend consolidation, ")
	b.WriteString("cost savings) and ending with a clear, strategic recommendation for the next step. ")
	b.WriteString("Do not simply repeat the numbers; interpret them and explain their business impact. ")
	b.WriteString("Frame the output as if you are advising the Account Executive.\n")
	return b.String()
}

// Synthesizer produces the narrative for a run.
type Synthesizer struct {
	client ModelClient
}

// NewSynthesizer returns a synthesizer backed by client. A nil client
// skips the model call.
func NewSynthesizer(client ModelClient) *Synthesizer {
	return &Synthesizer{client: client}
}

// Synthesize asks the model for a narrative. It never fails: model errors
// come back as a diagnostic string starting with DiagnosticPrefix.
func (s *Synthesizer) Synthesize(ctx context.Context, findings []analysis.Finding) string {
	log := logger.FromContext(ctx)
	if s == nil || s.client == nil {
		log.Info().Msg("narrative skipped: no model client")
		return SkippedNarrative
	}

	prompt := BuildPrompt(RenderFindings(findings))
	text, err := s.client.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrMalformedResponse
	}
	if err != nil {
		log.Warn().Err(err).Msg("narrative model call failed")
		return Diagnostic(err)
	}

	log.Info().Int("chars", len(text)).Msg("narrative generated")
	return strings.TrimSpace(text)
}

// Diagnostic renders err as the narrative text shown in place of analysis.
func Diagnostic(err error) string {
	return fmt.Sprintf("%s%v. %s", DiagnosticPrefix, err, diagnosticAdvice)
}
