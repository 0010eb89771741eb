package main

import (
	"time"

	"founder-engine/config"
	"founder-engine/generator"
	"founder-engine/models"
	"founder-engine/routes"
	"founder-engine/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Action{}, &models.DailyResult{})

	if cfg.OpenAIAPIKey == "" {
		utils.Sugar.Info("no OpenAI key configured, action generation is heuristic-only")
	}
	gen := generator.New(
		cfg.OpenAIAPIKey,
		cfg.OpenAIBaseURL,
		time.Duration(cfg.GeneratorTimeoutSec)*time.Second,
		utils.Sugar,
	)

	r := routes.SetupRouter(db, gen)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
