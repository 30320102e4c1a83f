package main

import (
	"log"

	"github.com/shestoi/GoShop/internal/app"
	"github.com/shestoi/GoShop/internal/config"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Собираем граф зависимостей: БД, кэш, хранилище, сервисы, HTTP API
	application, err := app.BuildShop(cfg)
	if err != nil {
		log.Fatalf("Failed to build shop: %v", err)
	}

	// Блокируется до graceful shutdown
	if err := application.Run(); err != nil {
		log.Fatalf("Service error: %v", err)
	}
}
