package main

import (
	"context"

	"github.com/showclub/showclub/internal/app"
	"github.com/showclub/showclub/internal/cache"
	"github.com/showclub/showclub/internal/config"
	"github.com/showclub/showclub/internal/db"
	"github.com/showclub/showclub/internal/logger"
	"github.com/showclub/showclub/internal/server"
	"github.com/showclub/showclub/internal/service/activity"
	"github.com/showclub/showclub/internal/service/friends"
	"github.com/showclub/showclub/internal/service/history"
	"github.com/showclub/showclub/internal/service/reviews"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	registrars := []server.Registrar{
		friends.NewRegistrar(appCtx),
		reviews.NewRegistrar(appCtx),
		history.NewRegistrar(appCtx),
		activity.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, log, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
