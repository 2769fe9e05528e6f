package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"aleenascuisine/config"
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
	orderSvc := service.NewOrderService(repos, nil, nil, nil, service.OrderConfig{
		Currency:              cfg.Currency,
		Pricing:               cfg.Pricing,
		PriceTolerance:        cfg.PriceTolerance,
		ReservationTTLMinutes: cfg.ReservationTTLMinutes,
		CancellationWindow:    cfg.CancellationWindow,
	}, log)

	sweeper := worker.NewReservationSweeper(orderSvc, cfg.SweepInterval, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	if err := sweeper.Run(ctx); err != nil {
		log.Fatal("sweeper failed", zap.Error(err))
	}
}
