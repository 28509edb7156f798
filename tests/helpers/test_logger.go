package helpers

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger provides logging utilities for tests
type TestLogger struct {
	Buffer *bytes.Buffer
	Logger *zerolog.Logger
}

// NewTestLogger creates a new test logger that captures output
func NewTestLogger() *TestLogger {
	buffer := &bytes.Buffer{}
	logger := zerolog.New(buffer).With().Timestamp().Logger()

	return &TestLogger{
		Buffer: buffer,
		Logger: &logger,
	}
}

// NewSilentTestLogger creates a logger that discards all output
func NewSilentTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard).With().Timestamp().Logger()
	return &logger
}

// GetLogOutput returns the captured log output
func (tl *TestLogger) GetLogOutput() string {
	return tl.Buffer.String()
}

// Reset clears the log buffer
func (tl *TestLogger) Reset() {
	tl.Buffer.Reset()
}

// AssertLogContains asserts that the log buffer contains the specified string
func (tl *TestLogger) AssertLogContains(t *testing.T, message string) {
	if !bytes.Contains(tl.Buffer.Bytes(), []byte(message)) {
		t.Errorf("Expected log to contain '%s', but got: %s", message, tl.GetLogOutput())
	}
}
