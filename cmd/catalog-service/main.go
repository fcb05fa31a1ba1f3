package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/catalog"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/config"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/consumer"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/db"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/logging"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/metrics"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/publisher"
)

const (
	serviceName     = "catalog-service"
	lookupPrefetch  = 5
	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the service configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Configure(cfg.Log.Level, cfg.Log.Text)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("catalog service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	getter := metrics.InstrumentGetter(opencatalog.NewHTTPGetter(cfg.OpenCatalog.Timeout))
	client := opencatalog.NewClient(cfg.OpenCatalog.Client(), getter)

	opts := catalog.Options{
		DefaultLang: cfg.OpenCatalog.DefaultLang,
		AccessToken: cfg.OpenCatalog.AccessToken,
	}

	// Connect to PostgreSQL
	if cfg.Postgres.Enabled {
		pg := cfg.Postgres
		database, err := db.NewPostgresDB(ctx, pg.Host, pg.Port, pg.User, pg.Password, pg.Database)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return err
		}
		opts.Archive = db.NewProductRepository(database)
	}

	// Connect to Redis
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.TTL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		opts.Cache = redisCache
	}

	// Connect to RabbitMQ
	var rabbitMQ *messaging.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		mq := cfg.RabbitMQ
		conn, err := messaging.NewRabbitMQ(mq.Host, mq.Port, mq.User, mq.Password)
		if err != nil {
			return err
		}
		defer conn.Close()
		rabbitMQ = conn

		pub, err := publisher.NewProductPublisher(rabbitMQ)
		if err != nil {
			return err
		}
		opts.Publisher = pub
	}

	service := catalog.NewService(client, opts)

	if rabbitMQ != nil {
		messages, err := rabbitMQ.Consume(publisher.ProductLookupQueue, lookupPrefetch)
		if err != nil {
			return err
		}
		lookupConsumer := consumer.NewLookupConsumer(service, cfg.Worker.RequestsPerMinute)
		// Runs before the RabbitMQ, Redis and PostgreSQL closes deferred above.
		stopConsumer := lookupConsumer.Start(ctx, messages)
		defer stopConsumer()
	}

	// Register with Consul
	if cfg.Consul.Enabled {
		consul, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port)
		if err != nil {
			return err
		}
		err = consul.Register(discovery.ServiceConfig{
			Name: serviceName,
			ID:   cfg.Server.ServiceID,
			Port: cfg.Server.Port,
			Tags: []string{"api", "products", "opencatalog"},
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := consul.Deregister(cfg.Server.ServiceID); err != nil {
				log.Warn().Err(err).Msg("failed to deregister service")
			}
		}()
	}

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Gin())

	handlers.NewProductHandler(service, serviceName).Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("service", serviceName).Int("port", cfg.Server.Port).Msg("starting http server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
