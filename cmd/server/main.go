package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/mymind/internal/buildinfo"
	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/dmitrijs2005/mymind/internal/server"
	"github.com/dmitrijs2005/mymind/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSON()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
