package container

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"propstack/catalog/internal/client"
	"propstack/catalog/internal/config"
	"propstack/catalog/internal/metrics"
	"propstack/catalog/internal/queue"
	"propstack/catalog/internal/repository"
	"propstack/catalog/internal/seed"
	"propstack/catalog/internal/server"
	"propstack/catalog/internal/service"
	"propstack/catalog/internal/state"
	"propstack/catalog/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config    *config.Config
	Store     store.KeyValueStore
	Documents store.DocumentStore
	Catalog   *service.Catalog
	Client    client.LogoClient
	Queue     queue.Queue // nil unless storage uses redis
	Registry  *prometheus.Registry

	Enricher *service.Enricher
	Server   *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
	}

	kv, err := container.openStore(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Store = kv

	original, err := seed.Load(ctx, cfg.Seed)
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to load seed document: %w", err)
	}

	documents, err := store.NewDocumentStore(kv, cfg.Storage.Key, original)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Documents = documents

	recorder := metrics.NewPrometheusRecorder(container.Registry)
	container.Catalog = service.NewCatalog(documents, recorder)

	container.Client = client.NewLogoClient(cfg.Enrich)

	container.Enricher = service.NewEnricher(
		container.Catalog,
		container.Client,
		container.Queue,
		recorder,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
		cfg.Enrich.MaxRetries,
	)

	container.Server = server.NewServer(cfg.Server, container.Catalog, container.Registry)

	return container, nil
}

func (c *Container) openStore(ctx context.Context) (store.KeyValueStore, error) {
	cfg := c.Config

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		c.redis = rdb

		// Test connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
		if err != nil {
			return nil, err
		}
		c.Queue = redisQueue

		return state.NewRedisStore(rdb), nil

	case config.BackendPostgres:
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		c.db = db

		repo := repository.NewDocumentRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		log.Info("✅ Connected to Postgres successfully")
		return repo, nil

	default:
		log.Warn("⚠️ Using in-memory storage, changes are lost on exit")
		return store.NewMemoryStore(), nil
	}
}

// Run serves HTTP and, with a queue, runs enrichment workers until ctx is done
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		return c.Server.Shutdown(context.Background())
	})

	if c.Queue != nil {
		g.Go(func() error {
			return c.Enricher.RunWorkers(ctx, c.Config.Enrich.MaxWorkers)
		})
	}

	return g.Wait()
}

// Enrich finds missing logos in process, or hands them to the queue workers
func (c *Container) Enrich(ctx context.Context, inline bool) (int, error) {
	if inline {
		return c.Enricher.RunInline(ctx, c.Config.Enrich.MaxWorkers)
	}
	return c.Enricher.EnqueueMissingLogos(ctx)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	log.Debug("Container shut down successfully")
	return nil
}
