package eventchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWithInitialCapacity verifies a custom capacity hint.
func TestWithInitialCapacity(t *testing.T) {
	c := New[int](WithInitialCapacity(32))

	assert.Equal(t, 32, c.capacity)
	assert.GreaterOrEqual(t, cap(c.listeners), 32)
}

// TestWithInitialCapacityNegative verifies negative hints are clamped.
func TestWithInitialCapacityNegative(t *testing.T) {
	c := New[int](WithInitialCapacity(-5))

	assert.Equal(t, 1, c.capacity)
}

// TestWithDebugLogging verifies the initial debug flag.
func TestWithDebugLogging(t *testing.T) {
	assert.True(t, New[int](WithDebugLogging(true)).DebugLogging())
	assert.False(t, New[int](WithDebugLogging(false)).DebugLogging())
}

// TestConfigure verifies package defaults apply before per-channel options.
func TestConfigure(t *testing.T) {
	Configure(WithDebugLogging(true), WithInitialCapacity(8))
	defer Configure()

	c := New[int]()
	assert.True(t, c.DebugLogging())
	assert.Equal(t, 8, c.capacity)

	override := New[int](WithDebugLogging(false))
	assert.False(t, override.DebugLogging())
	assert.Equal(t, 8, override.capacity)
}

// TestConfigureReset verifies calling Configure without options clears defaults.
func TestConfigureReset(t *testing.T) {
	Configure(WithDebugLogging(true))
	Configure()

	assert.False(t, New[int]().DebugLogging())
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv("")

	require.NoError(t, err)
	assert.Equal(t, 1, cfg.InitialCapacity)
	assert.False(t, cfg.DebugLogging)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("EVENTCHANNEL_INITIAL_CAPACITY", "12")
	t.Setenv("EVENTCHANNEL_DEBUG", "true")

	cfg, err := ConfigFromEnv("")

	require.NoError(t, err)
	assert.Equal(t, Config{InitialCapacity: 12, DebugLogging: true}, cfg)
}

func TestConfigFromEnvPrefix(t *testing.T) {
	t.Setenv("EVENTCHANNEL_INITIAL_CAPACITY", "12")
	t.Setenv("EVENTCHANNEL_SCORE_INITIAL_CAPACITY", "4")

	cfg, err := ConfigFromEnv("SCORE_")

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.InitialCapacity)
}

func TestConfigFromEnvError(t *testing.T) {
	t.Setenv("EVENTCHANNEL_INITIAL_CAPACITY", "lots")

	_, err := ConfigFromEnv("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestWithConfig(t *testing.T) {
	c := New[int](WithConfig(Config{InitialCapacity: 3, DebugLogging: true}))

	assert.Equal(t, 3, c.capacity)
	assert.True(t, c.DebugLogging())
}

func TestWithConfigZeroCapacityClamped(t *testing.T) {
	logger, logs := observed()

	c := New[int](WithLogger(logger), WithConfig(Config{}))

	assert.Equal(t, 1, c.capacity)
	assert.Equal(t, 1, logs.FilterMessage("initial listener capacity must be at least 1, adjusting").Len())
}
