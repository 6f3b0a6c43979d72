package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_meals/internal/cart"
	"github.com/fjod/go_meals/internal/catalog"
	"github.com/fjod/go_meals/internal/checkout"
	"github.com/fjod/go_meals/internal/config"
	"github.com/fjod/go_meals/internal/contact"
	"github.com/fjod/go_meals/internal/handoff"
	h "github.com/fjod/go_meals/internal/http"
	"github.com/fjod/go_meals/internal/metrics"
	"github.com/fjod/go_meals/internal/money"
	"github.com/fjod/go_meals/internal/orderlog"
	"github.com/fjod/go_meals/internal/storage"
	"github.com/fjod/go_meals/internal/view"
	"github.com/fjod/go_meals/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	kv, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	products, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", "products", products.Len())

	orders := orderlog.FanOut{
		Primary: orderlog.KVSink{},
		Metrics: m,
		Log:     log,
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := orderlog.NewKafkaSink(cfg.KafkaBrokers...)
		defer kafkaSink.Close()
		orders.Mirrors = map[string]orderlog.Sink{"kafka": kafkaSink}
		log.Info("order records mirrored to kafka", "brokers", cfg.KafkaBrokers, "topic", orderlog.Topic)
	}

	if cfg.Shop.WhatsAppNumber == "" {
		log.Warn("WHATSAPP_NUMBER is not set, handoff links will have no recipient")
	}

	formatter := money.NewFormatter(cfg.Shop.CurrencySymbol)
	dispatcher := handoff.NewDispatcher(handoff.TimeScheduler{}, handoff.LogOpener{Log: log}, m, log)

	carts := cart.NewService(kv, products, m, log)
	checkoutSvc := checkout.NewService(carts, orders, dispatcher, m, log, checkout.Options{
		Shop:          cfg.Shop,
		RedirectDelay: cfg.CheckoutRedirectDelay,
	})
	contactSvc := contact.NewService(cfg.Shop, cfg.ContactRedirectDelay, dispatcher, m, log)

	router := h.NewRouter(h.Handlers{
		Cart:     h.NewCartHandler(carts, view.NewRenderer(formatter), cfg.RequestTimeout, log),
		Products: h.NewProductHandler(products, formatter),
		Checkout: h.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout, log),
		Contact:  h.NewContactHandler(contactSvc, log),
		Metrics:  m.Handler(),
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	// let pending order mirrors finish before the kafka writer closes
	checkoutSvc.Wait()

	log.Info("server exited")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		log.Warn("using in-memory storage, carts are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis ping succeeded", "addr", cfg.RedisAddr)

		kv := storage.NewBreaker(storage.NewRedisStorage(redisClient, "storefront:"), storage.BreakerSettings{
			Name:   "redis",
			Logger: log,
		})
		return kv, func() { redisClient.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config, log *slog.Logger) (*catalog.Catalog, error) {
	if cfg.CatalogHTMLPath != "" {
		f, err := os.Open(cfg.CatalogHTMLPath)
		if err != nil {
			return nil, fmt.Errorf("open catalog page: %w", err)
		}
		defer f.Close()

		products, cardErrs, err := catalog.LoadHTML(f)
		if err != nil {
			return nil, err
		}
		for _, ce := range cardErrs {
			log.Warn("skipped product card", "index", ce.Index, "id", ce.ID, "reason", ce.Reason)
		}
		return catalog.New(products), nil
	}

	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return nil, err
	}
	return catalog.FromRepository(ctx, repo)
}
