// Package kernel wires the sync engine together: database, lookup cache,
// services, queue and the HTTP handler. The CLI and the HTTP server both
// boot through it.
package kernel

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordersync/app/controllers"
	"github.com/shashiranjanraj/ordersync/app/jobs"
	"github.com/shashiranjanraj/ordersync/app/repositories"
	"github.com/shashiranjanraj/ordersync/app/routes"
	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/pkg/cache"
	"github.com/shashiranjanraj/ordersync/pkg/database"
	"github.com/shashiranjanraj/ordersync/pkg/logger"
	"github.com/shashiranjanraj/ordersync/pkg/metrics"
	"github.com/shashiranjanraj/ordersync/pkg/middleware"
	"github.com/shashiranjanraj/ordersync/pkg/queue"
	"github.com/shashiranjanraj/ordersync/pkg/response"
	"github.com/shashiranjanraj/ordersync/pkg/router"
	"github.com/shashiranjanraj/ordersync/pkg/store"
)

// Kernel holds every long-lived dependency.
type Kernel struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Store  store.Store
	Schema config.SchemaConfig
	Config config.SyncConfig

	Lookups  *services.LookupService
	Snapshot *services.SnapshotService
	Audit    *services.AuditService
	Products *services.ProductService
	Queue    *queue.Manager
}

// Boot loads config, connects to the database and, when REDIS_ADDR is set,
// to Redis. A Redis failure only disables the lookup cache and the redis
// queue driver.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if config.RedisEnabled() {
		c, err := cache.Connect()
		if err != nil {
			logger.Warn("redis unavailable; lookup cache disabled", "addr", config.RedisAddr(), "error", err)
		} else {
			rdb = c
		}
	}
	return New(ctx, database.DB, rdb), nil
}

// New wires a kernel on db. rdb may be nil.
func New(ctx context.Context, db *gorm.DB, rdb *redis.Client) *Kernel {
	k := &Kernel{
		DB:     db,
		Redis:  rdb,
		Store:  store.NewGorm(db),
		Schema: config.Schema(),
		Config: config.Sync(),
	}

	var lookupCache services.Cacher
	if rdb != nil {
		lookupCache = cache.New(rdb)
	}
	k.Lookups = services.NewLookupService(k.Store, lookupCache, k.Config.LookupTTL)
	k.Snapshot = services.NewSnapshotService(k.Store, k.Lookups, k.Schema, k.Config)
	k.Audit = services.NewAuditService(k.Store, k.Lookups, k.Schema)
	k.Products = services.NewProductService(repositories.NewProductRepository(), k.Snapshot)

	var driver queue.Driver = queue.NewMemoryDriver()
	if config.QueueDriver() == "redis" && rdb != nil {
		driver = queue.NewRedisDriver(ctx, rdb)
	}
	k.Queue = queue.NewManager(driver)
	k.Queue.SetMaxRetry(config.QueueMaxAttempts())
	k.Queue.UseDB(db)
	jobs.Register(k.Queue, k.Snapshot, jobs.Requeue{
		Max:   config.QueueRequeues(),
		Delay: config.QueueRequeueDelay(),
	})

	return k
}

// Router builds the HTTP router with every route mounted.
func (k *Kernel) Router() *router.Router {
	r := router.New()

	// Outermost first: metrics see total latency, recovery sits inside the
	// request logger so panics are logged with the request_id.
	r.Use(metrics.Middleware(router.Pattern))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins()...)))

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", "health", k.health)

	routes.RegisterAPI(r, routes.Controllers{
		Products: controllers.NewProductController(
			k.Products, repositories.NewProductRepository(), k.Snapshot, k.Audit, k.Queue),
		Orders: controllers.NewOrderController(repositories.NewOrderRepository(), k.Products),
		Audit:  controllers.NewAuditController(k.Audit),
	})
	return r
}

// Handler is Router().Handler().
func (k *Kernel) Handler() http.Handler {
	return k.Router().Handler()
}

func (k *Kernel) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := k.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		response.Error(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}

// Close releases the database and Redis connections.
func (k *Kernel) Close() {
	if k.Redis != nil {
		_ = k.Redis.Close()
	}
	if sqlDB, err := k.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
