package log

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected slog.Level
	}{
		{name: "debug", expected: slog.LevelDebug},
		{name: "info", expected: slog.LevelInfo},
		{name: "warn", expected: slog.LevelWarn},
		{name: "error", expected: slog.LevelError},
		{name: "ERROR", expected: slog.LevelError},
		{name: "verbose", expected: slog.LevelInfo},
		{name: "", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, parseLevel(tt.name))
		})
	}
}
