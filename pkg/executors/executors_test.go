package executors_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisflow/aegis/pkg/executors"
)

func TestLatency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   map[string]any
		expected time.Duration
	}{
		{name: "nil config", config: nil, expected: 0},
		{name: "missing key", config: map[string]any{}, expected: 0},
		{name: "valid duration", config: map[string]any{"latency": "500ms"}, expected: 500 * time.Millisecond},
		{name: "invalid duration", config: map[string]any{"latency": "soon"}, expected: 0},
		{name: "negative duration", config: map[string]any{"latency": "-1s"}, expected: 0},
		{name: "wrong type", config: map[string]any{"latency": 3}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, executors.Latency(tt.config))
		})
	}
}

func TestSleep_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := executors.Sleep(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleep_ZeroDuration(t *testing.T) {
	t.Parallel()

	require.NoError(t, executors.Sleep(context.Background(), 0))
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme-corp", executors.Slugify("Acme Corp"))
	assert.Equal(t, "acme", executors.Slugify("  Acme  "))
}

func TestShortID(t *testing.T) {
	t.Parallel()

	first := executors.ShortID()
	second := executors.ShortID()

	assert.Len(t, first, 8)
	assert.NotEqual(t, first, second)
}
