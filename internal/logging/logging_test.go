package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/benpsk/stockview/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithOutput(config.Config{AppEnv: "production", LogLevel: "warn"}, &buf)

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	log.WithField("op", "add").Warn("add failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "add failed", line["msg"])
	assert.Equal(t, "add", line["op"])
}

func TestNewDevelopmentUsesText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithOutput(config.Config{AppEnv: "development", LogLevel: "debug"}, &buf)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, ok := log.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithOutput(config.Config{LogLevel: "loud"}, &buf)

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}
