package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-carrental/internal/agent/config"
)

func TestDefaultPath(t *testing.T) {
	p, err := config.DefaultPath()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".carrental", "credentials.json"), p)
}

func TestLoad_NoFile(t *testing.T) {
	creds, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.NotNil(t, creds)
	require.False(t, creds.LoggedIn())
}

func TestSaveLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "credentials.json")
	want := &config.Credentials{Token: "jwt", Email: "bob@example.com", Server: "http://localhost:8080"}

	require.NoError(t, config.Save(p, want))

	got, err := config.Load(p)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.True(t, got.LoggedIn())

	if runtime.GOOS != "windows" {
		st, err := os.Stat(p)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), st.Mode().Perm())
	}
}

func TestLoad_BadJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(p, []byte("{"), 0o600))

	_, err := config.Load(p)
	require.Error(t, err)
}

func TestRemove(t *testing.T) {
	p := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, config.Save(p, &config.Credentials{Token: "x"}))

	require.NoError(t, config.Remove(p))
	require.NoError(t, config.Remove(p))

	creds, err := config.Load(p)
	require.NoError(t, err)
	require.False(t, creds.LoggedIn())
}
