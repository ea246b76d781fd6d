package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/KaityXD/choas-lib/internal/client/cli"
	"github.com/KaityXD/choas-lib/internal/client/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
