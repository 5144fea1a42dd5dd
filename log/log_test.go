package log_test

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"pipelined.dev/bridge/log"
)

func TestWithLevel(t *testing.T) {
	if os.Getenv("BRIDGE_DEBUG") != "" {
		t.Skip("BRIDGE_DEBUG overrides levels")
	}
	assert.Equal(t, logrus.WarnLevel, log.WithLevel("warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, log.WithLevel("nonsense").GetLevel())
}

func TestSilent(t *testing.T) {
	assert.Equal(t, io.Discard, log.Silent().Out)
}
