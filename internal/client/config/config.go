package config

// Config holds runtime settings for the Vaultify CLI.
//
// Fields:
//   - GoogleClientID: OAuth 2.0 client id used for sign-in and token requests.
//   - GoogleClientSecret: matching client secret; only read from the
//     GOOGLE_CLIENT_SECRET environment variable, never from flags or JSON.
//   - DriveFolderID: id of the shared vault folder in Google Drive. It is
//     validated (non-empty, non-placeholder) by the Drive gateway before any
//     write operation.
//   - RedirectAddr: host:port the local OAuth callback server listens on.
//   - LogLevel: "debug", "info", "warn" or "error".
type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	DriveFolderID      string
	RedirectAddr       string
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RedirectAddr = "127.0.0.1:8080"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), the environment, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
