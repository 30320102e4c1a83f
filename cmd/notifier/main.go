package main

import (
	"log"

	"github.com/shestoi/GoShop/internal/app"
	"github.com/shestoi/GoShop/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.BuildNotifier(cfg)
	if err != nil {
		log.Fatalf("Failed to build notifier: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Service error: %v", err)
	}
}
