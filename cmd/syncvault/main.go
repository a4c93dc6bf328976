// Command syncvault refreshes the public document manifest from the vault
// folder. It authenticates with an API key only, so it can run unattended
// from cron or CI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sahilsync07/vaultify/internal/logging"
	"github.com/sahilsync07/vaultify/internal/manifest"
)

func main() {

	apiKey := flag.String("k", os.Getenv("GDRIVE_API_KEY"), "Google API key (default: GDRIVE_API_KEY env)")
	folderID := flag.String("f", os.Getenv("VAULTIFY_FOLDER_ID"), "vault folder id (default: VAULTIFY_FOLDER_ID env)")
	outPath := flag.String("o", "public/documents.json", "manifest output path")
	logLevel := flag.String("l", "info", "log level")
	flag.Parse()

	logger := logging.NewDefault(*logLevel)

	syncer := manifest.NewSyncer(*apiKey, *folderID, logger)
	count, err := syncer.Sync(context.Background(), *outPath)
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}

	fmt.Printf("Wrote %d document(s) to %s\n", count, *outPath)

}
