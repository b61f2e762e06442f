package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ordersvc/internal/catalog"
	"ordersvc/internal/config"
	"ordersvc/internal/db"
	"ordersvc/internal/events"
	"ordersvc/internal/httpapi"
	"ordersvc/internal/logger"
	"ordersvc/internal/metrics"
	"ordersvc/internal/order"
	"ordersvc/internal/payment"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	orderSvc := newOrderService(cfg, database)
	router := newServer(cfg, orderSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.KafkaBrokers != "" {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.PaymentTopic, cfg.PaymentGroupID, orderSvc)
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Error("payment event consumer exited", zap.Error(err))
				stop()
			}
		}()
	} else {
		log.Warn("KAFKA_BROKERS not set, payment events disabled")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		log.Info("order service listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

func newOrderService(cfg *config.Config, database *sql.DB) order.Service {
	var catalogClient catalog.Client = catalog.NewHTTPClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		catalogClient = catalog.NewCachedClient(catalogClient, rdb, 5*time.Minute)
		logger.L().Info("catalog cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	gateway := payment.NewHTTPGateway(cfg.PaymentBaseURL, cfg.PaymentAPIKey)
	repo := order.NewRepository(database)

	return order.NewService(repo, catalogClient, gateway, cfg.Currency)
}

func newServer(cfg *config.Config, orderSvc order.Service) http.Handler {
	httpMetrics := metrics.NewHTTPMetrics("ordersvc")
	return httpapi.NewRouter(httpapi.NewHandler(orderSvc), httpMetrics, []byte(cfg.JWTSecret))
}
