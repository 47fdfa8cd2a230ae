package main

import (
	"go.uber.org/fx"

	"fitjournal/internal/config"
	deliveryhttp "fitjournal/internal/delivery/http"
	"fitjournal/internal/infrastructure/crypto"
	"fitjournal/internal/infrastructure/database"
	"fitjournal/internal/infrastructure/logger"
	"fitjournal/internal/infrastructure/oauth2"
	"fitjournal/internal/infrastructure/redis"
	"fitjournal/internal/infrastructure/repository"
	"fitjournal/internal/infrastructure/whoop"
	"fitjournal/internal/server"
	"fitjournal/internal/usecase"
	"fitjournal/internal/worker"
)

func main() {
	fx.New(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		crypto.Module,
		whoop.Module,
		oauth2.Module,
		repository.Module,

		// Business Logic
		usecase.Module,
		worker.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	).Run()
}
