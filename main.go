package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/lefinal/bedwars-server/app"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	envFile := flag.String("env", ".env", "optional env file with overrides")
	flag.Parse()
	config, err := app.LoadConfig(*configPath, *envFile)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load config: %s\n", err.Error())
		os.Exit(1)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err = app.NewApp(config).Boot(ctx)
	if err != nil {
		cancel()
		os.Exit(1)
	}
}
