// Package config loads settings of the bridge tools.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables, e.g. BRIDGE_SAMPLE_RATE.
const EnvPrefix = "BRIDGE"

// Configuration keys.
const (
	KeySampleRate   = "sample-rate"
	KeyMaxBlockSize = "max-block-size"
	KeyBlockSize    = "block-size"
	KeyBitDepth     = "bit-depth"
	KeyEngine       = "engine"
	KeyLogLevel     = "log-level"
	KeyMetrics      = "metrics"
	KeyParameters   = "parameters"
)

// ErrInvalidSettings is returned when loaded settings can't be used.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings of the bridge tools.
type Settings struct {
	SampleRate   float64 `mapstructure:"sample-rate"`
	MaxBlockSize int     `mapstructure:"max-block-size"`
	BlockSize    int     `mapstructure:"block-size"`
	BitDepth     int     `mapstructure:"bit-depth"`
	Engine       string  `mapstructure:"engine"`
	LogLevel     string  `mapstructure:"log-level"`
	Metrics      bool    `mapstructure:"metrics"`

	// Parameters maps parameter names to normalized values applied
	// before processing, e.g. "wet-level: 0.4".
	Parameters map[string]float64 `mapstructure:"parameters"`
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeySampleRate, 48000.0)
	v.SetDefault(KeyMaxBlockSize, 1024)
	v.SetDefault(KeyBlockSize, 512)
	v.SetDefault(KeyBitDepth, 16)
	v.SetDefault(KeyEngine, "invert")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMetrics, false)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags makes flags take precedence over file and environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// Load reads the optional config file and unmarshals settings. Empty
// file means no config file.
func Load(v *viper.Viper, file string) (*Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks that settings can set a bridge up.
func (s *Settings) Validate() error {
	switch {
	case s.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %v", ErrInvalidSettings, s.SampleRate)
	case s.MaxBlockSize <= 0:
		return fmt.Errorf("%w: max block size %d", ErrInvalidSettings, s.MaxBlockSize)
	case s.BlockSize <= 0 || s.BlockSize > s.MaxBlockSize:
		return fmt.Errorf("%w: block size %d with max %d", ErrInvalidSettings, s.BlockSize, s.MaxBlockSize)
	case s.Engine == "":
		return fmt.Errorf("%w: empty engine", ErrInvalidSettings)
	}
	return nil
}
