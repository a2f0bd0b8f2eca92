package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mgirardot/pna-zonage/internal/aggregate"
	"github.com/mgirardot/pna-zonage/internal/cache/redisstore"
	"github.com/mgirardot/pna-zonage/internal/config"
	"github.com/mgirardot/pna-zonage/internal/geocode"
	"github.com/mgirardot/pna-zonage/internal/httpclient"
	"github.com/mgirardot/pna-zonage/internal/logger"
	"github.com/mgirardot/pna-zonage/internal/match"
	"github.com/mgirardot/pna-zonage/internal/observability"
	"github.com/mgirardot/pna-zonage/internal/refresh"
	"github.com/mgirardot/pna-zonage/internal/router"
	"github.com/mgirardot/pna-zonage/internal/server"
	"github.com/mgirardot/pna-zonage/internal/store"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "pnazoned",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting pnazoned",
		"addr", cfg.Addr,
		"version", Version,
		"data_dir", cfg.DataDir,
		"buffer_radius_m", cfg.BufferRadius)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zones := store.New(appLog, cfg.DataDir, cfg.ForceType)
	if err := zones.Load(); err != nil {
		appLog.Error("dataset load failed", "err", err)
		return 1
	}

	ban, err := geocode.New(appLog, httpclient.NewOutbound(cfg.GeocodeTimeout), cfg.GeocoderURL)
	if err != nil {
		appLog.Error("geocoder setup failed", "err", err)
		return 1
	}

	var redis *redisstore.Client
	if cfg.RedisAddr != "" {
		redis, err = redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = redis.Close() }()
	}

	geocoder, err := geocode.NewCached(ban, appLog, redis, cfg.GeocodeLRUSize, cfg.GeocodeCacheTTL)
	if err != nil {
		appLog.Error("geocode cache setup failed", "err", err)
		return 1
	}

	if cfg.Refresh.Enabled {
		consumer := refresh.New(refresh.Config{
			Brokers: cfg.Refresh.Brokers,
			Topic:   cfg.Refresh.Topic,
			GroupID: cfg.Refresh.GroupID,
		}, appLog, zones)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("refresh consumer exited", "err", err)
			}
		}()
	}

	deps := server.Deps{
		Verifier: router.Verifier{
			Logger:   appLog,
			Source:   zones,
			Geocoder: geocoder,
			Matcher:  match.New(match.WithBufferRadius(cfg.BufferRadius)),
			Agg:      aggregate.New(),
		},
		Reports: zones,
		Ready:   zones,
	}

	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
