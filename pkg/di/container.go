package di

import (
	"log/slog"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/feedcache"
	"github.com/goliatone/go-feed-cache/feedstore"
	"github.com/goliatone/go-feed-cache/userdir"
	"github.com/goliatone/go-feed-cache/warmup"
)

// Options configures a Container. Zero values fall back to each component's
// defaults, so di.NewContainer(di.Options{}, store, remote) is a working
// setup.
type Options struct {
	// Cache tunes the tagged payload cache. Zero means cache.DefaultConfig().
	Cache cache.Config

	// Directory tunes the caching proxy in front of the remote profile
	// directory.
	Directory userdir.ProxyConfig

	// TTL carries the per-resource payload TTLs.
	TTL feedcache.TTLConfig

	// BaseURL is the public site root used when rendering post URLs.
	BaseURL string

	// Logger is shared by every component. Nil means slog.Default().
	Logger *slog.Logger
}

// Container wires the feed cache components: one tagged cache service, one
// cached directory proxy, one aggregator, one orchestrator, one listener.
// Construct it once per process; the cache it owns is flushed only through
// explicit delete and invalidate calls, never implicitly reset.
type Container struct {
	cacheService cache.TaggedCacheService
	directory    userdir.Directory
	aggregator   *feed.Aggregator
	orchestrator *feedcache.Orchestrator
	listener     *feedcache.Listener
	store        feedstore.EntityStore
	log          *slog.Logger
}

// NewContainer builds the component graph. The store and the remote
// directory are injected so binaries, examples, and tests choose their own
// backends; everything in between is wired here.
func NewContainer(opts Options, store feedstore.EntityStore, remote userdir.Directory) (*Container, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	cacheCfg := opts.Cache
	if cacheCfg == (cache.Config{}) {
		cacheCfg = cache.DefaultConfig()
	}

	cacheService, err := cache.NewTaggedCacheService(cacheCfg)
	if err != nil {
		return nil, err
	}

	directory := userdir.NewCachedDirectory(remote, opts.Directory)

	aggregator := feed.NewAggregator(directory, feed.Config{
		BaseURL: opts.BaseURL,
		Logger:  log,
	})

	return &Container{
		cacheService: cacheService,
		directory:    directory,
		aggregator:   aggregator,
		orchestrator: feedcache.NewOrchestrator(cacheService, opts.TTL),
		listener:     feedcache.NewListener(cacheService, log),
		store:        store,
		log:          log,
	}, nil
}

// CacheService returns the singleton tagged cache instance.
func (c *Container) CacheService() cache.TaggedCacheService { return c.cacheService }

// Directory returns the cached profile directory.
func (c *Container) Directory() userdir.Directory { return c.directory }

// Aggregator returns the feed aggregator.
func (c *Container) Aggregator() *feed.Aggregator { return c.aggregator }

// Orchestrator returns the cache orchestration layer.
func (c *Container) Orchestrator() *feedcache.Orchestrator { return c.orchestrator }

// Listener returns the invalidation listener, ready to register as a store
// change observer.
func (c *Container) Listener() *feedcache.Listener { return c.listener }

// Store returns the injected entity store.
func (c *Container) Store() feedstore.EntityStore { return c.store }

// WarmCommand builds the warm-up command over the container's components.
func (c *Container) WarmCommand() *warmup.Command {
	return warmup.NewCommand(c.store, c.orchestrator, c.aggregator, c.log)
}
