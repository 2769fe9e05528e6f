package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aleenascuisine/config"
	"aleenascuisine/internal/cache"
	"aleenascuisine/internal/httpx"
	"aleenascuisine/internal/notifier"
	"aleenascuisine/internal/provider"
	"aleenascuisine/internal/repository"
	"aleenascuisine/internal/service"
	"aleenascuisine/internal/worker"
	"aleenascuisine/pkg/database"
	"aleenascuisine/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var paymentProvider service.PaymentProvider
	var verifier httpx.SignatureVerifier
	if cfg.Provider.Enabled {
		rp, err := provider.NewRazorpayClient(provider.Config{
			BaseURL:       cfg.Provider.BaseURL,
			KeyID:         cfg.Provider.KeyID,
			KeySecret:     cfg.Provider.KeySecret,
			WebhookSecret: cfg.Provider.WebhookSecret,
		}, log)
		if err != nil {
			log.Fatal("payment provider init failed", zap.Error(err))
		}
		paymentProvider = rp
		verifier = rp
	}

	var bus service.EventBus
	if len(cfg.KafkaBrokers) > 0 {
		kbus := notifier.NewKafkaEventBus(cfg.KafkaBrokers, "aleenascuisine-service")
		defer kbus.Close()
		bus = kbus
	}

	var statusCache service.StatusCache
	if cfg.Redis.Enabled {
		statusCache = cache.NewOrderStatusCache(cache.New(cfg.Redis.Addr))
	}

	orderSvc := service.NewOrderService(repos, paymentProvider, bus, statusCache, service.OrderConfig{
		Currency:              cfg.Currency,
		Pricing:               cfg.Pricing,
		PriceTolerance:        cfg.PriceTolerance,
		ReservationTTLMinutes: cfg.ReservationTTLMinutes,
		CancellationWindow:    cfg.CancellationWindow,
	}, log)
	catalogSvc := service.NewCatalogService(repos, log)
	cartSvc := service.NewCartService(repos, log)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		sweeper := worker.NewReservationSweeper(orderSvc, cfg.SweepInterval, log)
		if err := sweeper.Run(sweepCtx); err != nil {
			log.Error("reservation sweeper exited", zap.Error(err))
		}
	}()

	r := httpx.NewRouter()
	(&httpx.CatalogHandler{Svc: catalogSvc}).Register(r)
	(&httpx.CartHandler{Svc: cartSvc, Pricing: cfg.Pricing}).Register(r)
	(&httpx.OrdersHandler{Svc: orderSvc}).Register(r)
	(&httpx.WebhookHandler{Svc: orderSvc, Verifier: verifier, Log: log}).Register(r)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("HTTP server stopped gracefully")
}
