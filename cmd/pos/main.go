package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophpos/internal/client/cli"
	"github.com/dmitrijs2005/gophpos/internal/client/config"
	"github.com/dmitrijs2005/gophpos/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	token, err := cli.PromptToken(os.Stdout, cfg.APIToken)
	if err != nil {
		log.Fatalf("%v", err)
	}
	cfg.APIToken = token

	app, err := cli.NewApp(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
