package common

import (
	"bytes"
	"testing"
)

func TestNewLogger_ReturnsNonNil(t *testing.T) {
	logger := NewLogger("info")
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
}

func TestNewLogger_FluentAPI(t *testing.T) {
	// Must not panic — proves the fluent chain works with arbor
	logger := NewSilentLogger()
	logger.Info().Str("key", "value").Msg("test message")
	logger.Warn().Int("count", 42).Msg("warning")
	logger.Error().Err(nil).Msg("error message")
	logger.Debug().Float64("rate", 3.14).Bool("ok", true).Msg("debug")
}

func TestNewLoggerWithOutput_WritesToProvidedWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)
	logger.Info().Str("key", "value").Msg("hello")

	if buf.String() == "" {
		t.Error("Expected output to provided writer, got empty string")
	}
}

func TestNewSilentLogger_DiscardsOutput(t *testing.T) {
	logger := NewSilentLogger()
	if logger == nil {
		t.Fatal("NewSilentLogger returned nil")
	}
	// Must not panic or write anywhere
	logger.Info().Str("key", "value").Msg("discarded")
}

func TestWithCorrelationId(t *testing.T) {
	logger := NewSilentLogger()
	correlated := logger.WithCorrelationId("req-123")
	if correlated == nil {
		t.Fatal("WithCorrelationId returned nil")
	}
	correlated.Info().Msg("correlated message")
}
