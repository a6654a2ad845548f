// @title AeroCrew Training API
// @version 1.0
// @description Backend for the AeroCrew virtual-airline training and examination portal.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"aerocrew_training_backend/internal/app"
	"aerocrew_training_backend/internal/config"
	"aerocrew_training_backend/pkg/configwatcher"
	"aerocrew_training_backend/pkg/logger"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", application.ReloadConfig)

	application.Run()
}
