package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONFormatAndLevel(t *testing.T) {
	closer, err := Init(Options{Level: "warn", Format: "json"})
	require.NoError(t, err)
	defer closer.Close()

	var buf bytes.Buffer
	Logger.SetOutput(&buf)

	Logger.Info("hidden")
	Logger.WithField("user_id", "u1").Warn("shown")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, logrus.WarnLevel, Logger.GetLevel())
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	closer, err := Init(Options{Level: "chatty"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	closer, err := Init(Options{Level: "info", File: path})
	require.NoError(t, err)

	Logger.Info("to file")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}
