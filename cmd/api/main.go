package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sagarchy-05/ecommerce-backend/internal/auth"
	"github.com/sagarchy-05/ecommerce-backend/internal/clients"
	"github.com/sagarchy-05/ecommerce-backend/internal/config"
	"github.com/sagarchy-05/ecommerce-backend/internal/events"
	"github.com/sagarchy-05/ecommerce-backend/internal/handlers"
	"github.com/sagarchy-05/ecommerce-backend/internal/mailer"
	"github.com/sagarchy-05/ecommerce-backend/internal/repository"
	"github.com/sagarchy-05/ecommerce-backend/internal/server"
	"github.com/sagarchy-05/ecommerce-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "ecommerce-backend")

	db, err := repository.Open(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository()
	categoryRepo := repository.NewCategoryRepository()
	productRepo := repository.NewProductRepository()
	imageRepo := repository.NewProductImageRepository()
	addressRepo := repository.NewAddressRepository()
	orderRepo := repository.NewOrderRepository()

	var cache repository.CatalogCache = repository.NopCatalogCache{}
	if cfg.Features.EnableCatalogCache {
		cache = repository.NewRedisCatalogCache(cfg.Redis, logger)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Features.EnableOrderEvents {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger)
	}
	defer publisher.Close()

	var mail mailer.Sender = mailer.NopSender{}
	if cfg.Features.EnableEmails {
		mail = mailer.NewSMTPMailer(cfg.SMTP, logger)
	}

	storage := clients.NewHTTPObjectStorage(cfg.Storage, logger)
	tokens := auth.NewTokenIssuer(cfg.Auth)

	orderService := service.NewOrderService(db, orderRepo, productRepo, publisher, logger)
	catalogService := service.NewCatalogService(db, productRepo, categoryRepo, imageRepo, cache, logger)
	userService := service.NewUserService(db, userRepo, tokens, mail, cfg.Server.BaseURL, logger)
	addressService := service.NewAddressService(db, addressRepo)
	imageService := service.NewImageService(db, imageRepo, productRepo, storage, logger)

	h := handlers.NewHandlers(orderService, catalogService, userService, addressService, imageService, logger)

	srv := server.New(cfg, h, tokens, db)

	go func() {
		logger.Info("server starting",
			"port", cfg.Server.Port,
			"order_events", cfg.Features.EnableOrderEvents,
			"catalog_cache", cfg.Features.EnableCatalogCache,
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
