package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"collabmeet-client/config"
	"collabmeet-client/telemetry"
	"collabmeet-client/ui"

	"github.com/joho/godotenv"
)

func main() {
	apiURL := flag.String("api", "", "backend API base URL (overrides config and environment)")
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Development convenience, missing file is fine
	_ = godotenv.Load(".env")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}

	logger, err := telemetry.InitLogger(cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cleanup, err := telemetry.InitTelemetry(context.Background(), cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	app := ui.NewApp(cfg, logger)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
