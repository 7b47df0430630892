package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		for _, level := range []string{"none", "debug", "info", "warn", "error", "panic", "fatal"} {
			log, err := NewLogger(format, level)
			require.NoError(t, err, "format %q level %q", format, level)
			require.NotNil(t, log)
		}
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger("json", "verbose")
	require.Error(t, err)
}

func TestMustNewLoggerPanicsOnUnknownLevel(t *testing.T) {
	require.Panics(t, func() {
		MustNewLogger("json", "verbose")
	})
}

func TestNoopLoggerDiscardsFields(t *testing.T) {
	log := NewNoopLogger()
	log.Debug("msg", zap.String("k", "v"))
	log.Info("msg")
	log.Warn("msg")
	log.Error("msg", zap.Error(nil))
}
