package config

import (
	"flag"
	"os"

	"github.com/sahilsync07/vaultify/internal/flagx"
)

// parseEnv overlays Config with values from the environment. The client
// secret is deliberately environment-only so it never lands in a config
// file or shell history.
func parseEnv(cfg *Config) {
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.GoogleClientSecret = v
	}
	if v := os.Getenv("VAULTIFY_FOLDER_ID"); v != "" {
		cfg.DriveFolderID = v
	}
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-g string   Google OAuth client id
//	-f string   Drive folder id of the vault
//	-r string   local OAuth callback address (host:port)
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-g", "-f", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.GoogleClientID, "g", cfg.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&cfg.DriveFolderID, "f", cfg.DriveFolderID, "Drive folder id of the vault")
	fs.StringVar(&cfg.RedirectAddr, "r", cfg.RedirectAddr, "local OAuth callback address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
