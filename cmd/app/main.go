package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"SignalDesk/internal/di"
	"SignalDesk/pkg/config"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s symbols=%v kafka=%t redis=%t", cfg.Environment, cfg.Binance.Symbols, cfg.Kafka.Enabled, cfg.Redis.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
