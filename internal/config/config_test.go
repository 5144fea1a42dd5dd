package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/bridge/internal/config"
)

func TestDefaults(t *testing.T) {
	s, err := config.Load(config.New(), "")
	require.Nil(t, err)
	assert.Equal(t, &config.Settings{
		SampleRate:   48000,
		MaxBlockSize: 1024,
		BlockSize:    512,
		BitDepth:     16,
		Engine:       "invert",
		LogLevel:     "info",
	}, s)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.Nil(t, os.WriteFile(path, []byte(`
sample-rate: 96000
engine: gain
metrics: true
parameters:
  dry-level: 0.25
`), 0o600))

	s, err := config.Load(config.New(), path)
	require.Nil(t, err)
	assert.Equal(t, 96000.0, s.SampleRate)
	assert.Equal(t, "gain", s.Engine)
	assert.True(t, s.Metrics)
	assert.Equal(t, map[string]float64{"dry-level": 0.25}, s.Parameters)
	assert.Equal(t, 512, s.BlockSize)
}

func TestMissingFile(t *testing.T) {
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}

func TestEnv(t *testing.T) {
	t.Setenv("BRIDGE_BLOCK_SIZE", "256")
	t.Setenv("BRIDGE_ENGINE", "none")
	s, err := config.Load(config.New(), "")
	require.Nil(t, err)
	assert.Equal(t, 256, s.BlockSize)
	assert.Equal(t, "none", s.Engine)
}

func TestFlags(t *testing.T) {
	t.Setenv("BRIDGE_ENGINE", "none")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(config.KeyEngine, "", "")
	flags.Int(config.KeyBlockSize, 0, "")
	require.Nil(t, flags.Parse([]string{"--engine=gain"}))

	v := config.New()
	require.Nil(t, config.BindFlags(v, flags))
	s, err := config.Load(v, "")
	require.Nil(t, err)
	// changed flag wins over env, unchanged flag doesn't hide the default.
	assert.Equal(t, "gain", s.Engine)
	assert.Equal(t, 512, s.BlockSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
	}{
		{"sample rate", config.Settings{SampleRate: 0, MaxBlockSize: 1, BlockSize: 1, Engine: "none"}},
		{"max block size", config.Settings{SampleRate: 1, MaxBlockSize: 0, BlockSize: 1, Engine: "none"}},
		{"block size", config.Settings{SampleRate: 1, MaxBlockSize: 1, BlockSize: 2, Engine: "none"}},
		{"engine", config.Settings{SampleRate: 1, MaxBlockSize: 1, BlockSize: 1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.ErrorIs(t, test.settings.Validate(), config.ErrInvalidSettings)
		})
	}
}
