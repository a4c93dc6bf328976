package main

import (
	"context"
	"log"
	"os"

	"github.com/sahilsync07/vaultify/internal/buildinfo"
	"github.com/sahilsync07/vaultify/internal/client/cli"
	"github.com/sahilsync07/vaultify/internal/client/config"
	"github.com/sahilsync07/vaultify/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewDefault(cfg.LogLevel)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
