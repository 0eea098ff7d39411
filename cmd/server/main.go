package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophpos/internal/logging"
	"github.com/dmitrijs2005/gophpos/internal/server"
	"github.com/dmitrijs2005/gophpos/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if cfg.IssueTenant > 0 {
		token, csrf, err := server.IssueTokens(cfg, cfg.IssueTenant)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("token: %s\ncsrf:  %s\n", token, csrf)
		return
	}

	logger := logging.New(os.Stdout, "json", cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
