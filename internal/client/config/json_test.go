package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"google_client_id": "json-client",
		"drive_folder_id":  "json-folder",
		"redirect_addr":    "127.0.0.1:9876",
		"log_level":        "warn",
	})

	t.Run("loads from -config flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "json-client", cfg.GoogleClientID)
		assert.Equal(t, "json-folder", cfg.DriveFolderID)
		assert.Equal(t, "127.0.0.1:9876", cfg.RedirectAddr)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("no flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Empty(t, cfg.GoogleClientID)
		assert.Equal(t, "127.0.0.1:8080", cfg.RedirectAddr)
	})

	t.Run("absent keys keep earlier values", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{"drive_folder_id": "only-folder"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		cfg.GoogleClientID = "from-defaults"
		parseJson(cfg)

		assert.Equal(t, "only-folder", cfg.DriveFolderID)
		assert.Equal(t, "from-defaults", cfg.GoogleClientID)
	})

	t.Run("unreadable file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "missing.json")}

		cfg := &Config{}
		assert.Panics(t, func() { parseJson(cfg) })
	})
}
