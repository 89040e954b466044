// Package kernel boots the service: config, logging, database, cache,
// events, the live feed and the HTTP handler.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/app/repositories"
	"github.com/shashiranjanraj/inventory/app/routes"
	"github.com/shashiranjanraj/inventory/app/schema"
	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/config"
	"github.com/shashiranjanraj/inventory/pkg/cache"
	"github.com/shashiranjanraj/inventory/pkg/database"
	"github.com/shashiranjanraj/inventory/pkg/event"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
	"github.com/shashiranjanraj/inventory/pkg/middleware"
	"github.com/shashiranjanraj/inventory/pkg/migration"
	"github.com/shashiranjanraj/inventory/pkg/reqid"
	"github.com/shashiranjanraj/inventory/pkg/router"
	"github.com/shashiranjanraj/inventory/pkg/storage"
	"github.com/shashiranjanraj/inventory/pkg/ws"
)

const eventWorkers = 4

// Kernel owns every long-lived dependency. Build one with Boot and release
// it with Close.
type Kernel struct {
	DB      *gorm.DB
	Cache   *cache.Store
	Events  *event.Dispatcher
	Feed    *ws.Hub
	Storage *storage.Manager
	Catalog *services.CatalogService

	logSink *logger.MongoHandler
}

// Boot loads configuration and connects everything the catalog needs.
// An unreachable Redis only disables caching.
func Boot(ctx context.Context) (*Kernel, error) {
	k, err := BootDB(ctx)
	if err != nil {
		return nil, err
	}

	k.Cache, err = cache.Connect(ctx, config.RedisAddr(), config.RedisPassword(), config.RedisDB())
	if err != nil {
		logger.Warn("cache: redis unavailable, caching disabled", "addr", config.RedisAddr(), "error", err)
		k.Cache = nil
	}

	k.Storage, err = storage.NewManager(ctx, storage.Config{
		Default:   config.StorageDefault(),
		LocalRoot: config.StorageLocalRoot(),
		LocalURL:  config.StorageURL(),
		S3: storage.S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		},
	})
	if err != nil {
		k.Close()
		return nil, err
	}

	k.Events = event.NewDispatcher(eventWorkers)
	k.Feed = ws.NewHub()
	services.RegisterListeners(k.Events, k.Feed)

	repo := repositories.NewProductRepository(k.DB)
	k.Catalog = services.NewCatalogService(repo, k.Cache, k.Events, config.CacheTTL())
	return k, nil
}

// BootDB loads configuration, sets up logging and opens the database. It is
// all the migrate and seed commands need.
func BootDB(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	k := &Kernel{}
	k.setupLogger(ctx)

	db, err := database.Open(ctx, config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		k.Close()
		return nil, err
	}
	k.DB = db
	return k, nil
}

func (k *Kernel) setupLogger(ctx context.Context) {
	opts := logger.Options{Production: config.IsProduction()}

	var sinkErr error
	if uri := config.LogMongoURI(); uri != "" {
		k.logSink, sinkErr = logger.NewMongoHandler(ctx, uri, config.LogMongoDB(), config.LogMongoCollection(), nil)
		if sinkErr == nil {
			opts.Extra = append(opts.Extra, k.logSink)
		}
	}

	logger.Setup(opts)
	if sinkErr != nil {
		logger.Warn("logger: mongo sink disabled", "error", sinkErr)
	}
}

// Migrate runs every pending registered migration.
func (k *Kernel) Migrate(ctx context.Context) (int, error) {
	return migration.New(k.DB).Run(ctx)
}

// Handler builds the HTTP handler with the global middleware stack.
func (k *Kernel) Handler() (http.Handler, error) {
	r, err := k.Router()
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}

// Router builds the router with middleware and every route mounted.
func (k *Kernel) Router() (*router.Router, error) {
	r := router.New()

	// Outermost first: metrics see total latency, Recovery catches panics
	// before the logger, and the request id exists before anything logs.
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins()...)),
		middleware.RateLimit(config.RateLimit(), time.Minute, config.TrustedProxies()...),
	)

	if err := Routes(r, k.Catalog, k.Feed); err != nil {
		return nil, err
	}
	return r, nil
}

// Routes mounts the API on r. feed may be nil.
func Routes(r *router.Router, catalog services.Catalog, feed *ws.Hub) error {
	s, err := schema.New(catalog)
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}
	deps := routes.Deps{Catalog: catalog, Schema: &s}
	if feed != nil {
		deps.Feed = feed
	}
	routes.RegisterAPI(r, deps)
	return nil
}

// Close releases everything Boot opened. It is safe on a partly booted
// kernel.
func (k *Kernel) Close() error {
	if k.Events != nil {
		k.Events.Close()
	}
	var errs []error
	if err := k.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := database.Close(k.DB); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if k.logSink != nil {
		k.logSink.Close()
	}
	return errors.Join(errs...)
}
