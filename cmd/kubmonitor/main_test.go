package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/kubmonitor/internal/app"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "logging:\n  file: " + filepath.Join(dir, "kubmonitor.log") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSnapshotCommandMock(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"snapshot", "ml-team", "--mock", "-o", "json", "--config", writeTestConfig(t)})
	t.Cleanup(func() { useMock = false; configFile = "" })

	require.NoError(t, rootCmd.Execute())

	var snap struct {
		Namespace string        `json:"namespace"`
		Jobs      []interface{} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, "ml-team", snap.Namespace)
	assert.Len(t, snap.Jobs, 30)
}

func TestNamespaceRequired(t *testing.T) {
	rootCmd.SetArgs([]string{"snapshot", "--mock"})
	t.Cleanup(func() { useMock = false })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace is required")
}

func TestTooManyArguments(t *testing.T) {
	rootCmd.SetArgs([]string{"console", "a", "b"})
	assert.Error(t, rootCmd.Execute())
}

func TestCheckCommandNeedsCluster(t *testing.T) {
	rootCmd.SetArgs([]string{"check", "ml-team", "--mock", "--config", writeTestConfig(t)})
	t.Cleanup(func() { useMock = false; configFile = "" })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrNoAccessCheck)
}
