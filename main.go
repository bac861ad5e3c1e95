package main

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tracker-api/api"
	"tracker-api/client"
	"tracker-api/config"
	"tracker-api/service"
	"tracker-api/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("TRACKER_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	store := buildStore(cfg)

	var rc *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		rc = redis.NewClient(opts)
		if cfg.Redis.CacheTTL.Duration > 0 {
			store = storage.NewCache(store, rc, cfg.Redis.CacheTTL.Duration)
		}
	}

	var deduper api.Deduper
	if rc != nil {
		deduper = api.NewRedisDeduper(rc, cfg.Redis.DedupeTTL.Duration)
	}

	var planner service.Planner
	if cfg.AI.Enabled {
		planner = client.NewPlanner(cfg.AI.BaseURL, cfg.AI.APIToken, cfg.Timeout())
	}

	logger := log.New()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	creator := service.NewEnricher(store, planner, logger)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.Register(e, store, creator, deduper, logger)

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}

func buildStore(cfg *config.Config) storage.Store {
	switch cfg.Backend {
	case config.BackendFile:
		return storage.NewFileStore(cfg.FilePath)
	case config.BackendRemote:
		bin := client.NewJSONBin(cfg.JSONBin.BaseURL, cfg.JSONBin.BinID, cfg.JSONBin.MasterKey, cfg.Timeout())
		return storage.NewRemoteStore(bin)
	default:
		return storage.NewMemoryStore()
	}
}
