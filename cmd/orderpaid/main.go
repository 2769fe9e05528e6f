package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"aleenascuisine/config"
	"aleenascuisine/internal/invoice"
	"aleenascuisine/internal/notifier"
	"aleenascuisine/internal/repository"
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
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the order.paid worker")
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)
	generator := invoice.NewGenerator(repos, log)

	consumer := worker.NewOrderPaidConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, notifier.TopicOrderPaid, generator, log)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil {
		log.Fatal("order.paid consumer failed", zap.Error(err))
	}
}
