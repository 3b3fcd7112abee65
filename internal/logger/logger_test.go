package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New()
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNewWithLevel(t *testing.T) {
	log := NewWithLevel(zerolog.WarnLevel, FormatJSON)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("report", "Supplier_Analysis_Report.xlsx").Msg("report written")

	assert.Contains(t, buf.String(), "report written")
	assert.Contains(t, buf.String(), "Supplier_Analysis_Report.xlsx")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	require.NotNil(t, ctx.Value(LoggerKey))

	log := FromContext(ctx)
	log.Info().Msg("test")
	assert.NotZero(t, buf.Len())
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"run_id":   "1a2b3c4d",
		"category": "relevant_spend",
	})
	log.Info().Msg("categorized")

	out := buf.String()
	assert.Contains(t, out, "run_id")
	assert.Contains(t, out, "1a2b3c4d")
	assert.Contains(t, out, "relevant_spend")
}
