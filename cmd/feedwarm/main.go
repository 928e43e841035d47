// Command feedwarm runs one cache warm-up pass against the configured store
// and exits. Schedule it from cron or a job runner; it does not loop.
//
// Exit codes: 0 on success (including an empty store, which logs a warning),
// 1 on a warm-up failure, 2 on bad invocation or configuration.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feedcache"
	"github.com/goliatone/go-feed-cache/feedstore"
	"github.com/goliatone/go-feed-cache/internal/config"
	"github.com/goliatone/go-feed-cache/pkg/di"
	"github.com/goliatone/go-feed-cache/userdir"
	"github.com/goliatone/go-feed-cache/warmup"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (falls back to CONFIG_PATH, then ./local.yaml, then env)")
		scopeFlag  = flag.String("scope", string(warmup.ScopeAll), "warm-up scope: posts, comments, reactions, all")
	)
	flag.Parse()

	scope, err := warmup.ParseScope(*scopeFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log := setupLogger(cfg.Env)

	sqldb, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		log.Error("open database", slog.String("err", err.Error()))
		os.Exit(2)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	store := feedstore.New(db)
	remote := userdir.NewHTTPClient(cfg.UserDirectory.BaseURL, cfg.UserDirectory.Timeout)

	container, err := di.NewContainer(di.Options{
		Cache: cache.Config{
			Capacity:           cfg.Cache.Capacity,
			NumShards:          cfg.Cache.NumShards,
			DefaultTTL:         cfg.Cache.DefaultTTL,
			EvictionPercentage: cfg.Cache.EvictionPercentage,
			EvictionInterval:   cfg.Cache.EvictionInterval,
		},
		Directory: userdir.ProxyConfig{
			Capacity: cfg.UserDirectory.CacheCapacity,
			TTL:      cfg.UserDirectory.CacheTTL,
		},
		TTL: feedcache.TTLConfig{
			FeedPage:   cfg.TTL.FeedPage,
			Comments:   cfg.TTL.Comments,
			Engagement: cfg.TTL.Engagement,
		},
		BaseURL: cfg.Feed.BaseURL,
		Logger:  log,
	}, store, remote)
	if err != nil {
		log.Error("wire components", slog.String("err", err.Error()))
		os.Exit(2)
	}

	// The warm run issues no writes, but registering the hook keeps the
	// binary's wiring identical to the serving process it warms for.
	db.AddQueryHook(feedstore.NewInvalidationHook(container.Listener()))

	report, err := container.WarmCommand().Run(context.Background(), scope)
	if err != nil {
		log.Error("warm-up failed", slog.String("scope", string(scope)), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("warm-up finished",
		slog.String("scope", string(report.Scope)),
		slog.Int("entries", len(report.Fingerprints)),
		slog.Bool("empty", report.Empty),
		slog.Duration("duration", report.Duration))
}

// setupLogger picks the handler by environment: readable text locally, JSON
// everywhere else, debug level outside prod.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.Default()
	}
}
