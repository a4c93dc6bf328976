package config

import (
	"encoding/json"
	"os"

	"github.com/sahilsync07/vaultify/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Values are
// copied into the runtime Config afterwards; absent keys leave the existing
// value untouched.
type JsonConfig struct {
	GoogleClientID string `json:"google_client_id"`
	DriveFolderID  string `json:"drive_folder_id"`
	RedirectAddr   string `json:"redirect_addr"`
	LogLevel       string `json:"log_level"`
}

// parseJson overlays Config with values from the JSON file named by the
// -c/-config flag. No flag means no JSON is loaded. Read or unmarshal
// errors panic; intended usage is defaults -> parseJson -> parseEnv ->
// parseFlags, where later stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.GoogleClientID != "" {
		cfg.GoogleClientID = jc.GoogleClientID
	}
	if jc.DriveFolderID != "" {
		cfg.DriveFolderID = jc.DriveFolderID
	}
	if jc.RedirectAddr != "" {
		cfg.RedirectAddr = jc.RedirectAddr
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
