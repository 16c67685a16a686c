package main

import (
	"context"
	"log"
	"os"

	"github.com/librefy/librefy-cli/internal/buildinfo"
	"github.com/librefy/librefy-cli/internal/cli"
	"github.com/librefy/librefy-cli/internal/config"
	"github.com/librefy/librefy-cli/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewDefaultSlogLogger()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
