package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discovery-api/docs"
	"discovery-api/internal/aggregate"
	"discovery-api/internal/cache"
	"discovery-api/internal/catalog"
	"discovery-api/internal/config"
	"discovery-api/internal/facet"
	"discovery-api/internal/fallback"
	"discovery-api/internal/handler"
	"discovery-api/internal/metrics"
	"discovery-api/internal/middleware"
	"discovery-api/internal/models"
	"discovery-api/internal/repository"
	"discovery-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// store is everything the API reads from the document store.
type store interface {
	catalog.Repository
	aggregate.ReviewRepository
	facet.TagRepository
	service.MenuRepository
	Ping(ctx context.Context) error
}

func main() {
	// a missing .env file is fine
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	if err := facet.Validate(facet.Filters()); err != nil {
		log.Fatal().Err(err).Msg("invalid tag filters")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		log.Fatal().Err(err).Msg("cannot register metrics")
	}

	// Document store
	var repo store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem, err := repository.NewMemoryStoreFromFile(cfg.SeedFile, m)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("cannot load seed file")
		}
		repo = mem
	default:
		pool, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer pool.Close()
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("cannot prepare schema")
		}
		repo = repository.NewRepository(pool, m)
	}

	checks := map[string]handler.HealthChecker{"store": repo.Ping}

	deps := service.Dependencies{
		Catalog:    catalog.NewLoader(repo),
		Aggregator: aggregate.NewAggregator(repo, cfg.AggregateConcurrency, m),
		Menu:       repo,
		Tags:       facet.NewIndex(repo, cfg.TagCacheSize, cfg.TagCacheTTL),
	}

	// Result cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		rc := cache.NewRedisCache(client, cfg.CacheTTL, m)
		deps.Cache = rc
		checks["cache"] = rc.HealthCheck
	}

	// External places
	if cfg.PlacesAPIKey != "" {
		deps.Provider = fallback.NewPlacesClient(cfg.PlacesAPIKey, cfg.PlacesBaseURL, &http.Client{Timeout: cfg.FallbackTimeout})
	} else {
		log.Warn().Msg("PLACES_API_KEY not set, external fallback disabled")
	}

	// Initialize layers
	discoveryService := service.NewDiscoveryService(deps, service.Options{
		SnapshotTTL:      cfg.SnapshotTTL,
		LoadTimeout:      cfg.SnapshotLoadTimeout,
		FallbackTimeout:  cfg.FallbackTimeout,
		FallbackDebounce: cfg.FallbackDebounce,
		Metrics:          m,
	})

	searchHandler := handler.NewSearchHandler(discoveryService)
	placesHandler := handler.NewPlacesHandler(discoveryService)
	healthHandler := handler.NewHealthHandler(checks)
	sessionHandler := handler.NewSessionHandler(func(emit func(models.SessionEvent)) handler.SearchSession {
		return discoveryService.NewSession(emit)
	}, cfg.AllowedOrigins())

	if level > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log.Logger), middleware.Metrics(m), gin.Recovery())

	r.GET("/health", healthHandler.Health)
	r.GET("/restaurants", searchHandler.Restaurants)
	r.GET("/dishes", searchHandler.Dishes)
	r.GET("/tags", searchHandler.Tags)
	r.GET("/places/search", placesHandler.SearchPlaces)
	r.GET("/places/photo", placesHandler.Photo)
	r.GET("/ws/search", sessionHandler.Serve)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
