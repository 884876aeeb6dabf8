package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("", "", &buf)
	require.NoError(t, err)

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	logger.Debug("hidden")
	logger.WithField("build", "build3").Info("resolved")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "build=build3")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("DEBUG", "json", &buf)
	require.NoError(t, err)

	logger.WithField("source", "tasks.yaml").Debug("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "tasks.yaml", entry["source"])
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", "text", &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}
