package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ConnectDB opens the postgres connection and tunes the pool. Fatal on
// failure: the services cannot run without their database.
func ConnectDB(cfg *Config, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("database connection failed", zap.String("host", cfg.Host), zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("database handle unavailable", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("database connected", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
	return db
}

// ConnectDBForMigration uses a single connection and verbose SQL logging.
func ConnectDBForMigration(cfg *Config, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Info),
	})
	if err != nil {
		log.Fatal("database connection failed", zap.String("host", cfg.Host), zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("database handle unavailable", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func CloseDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("database handle unavailable on close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close failed", zap.Error(err))
		return
	}
	log.Info("database connection closed")
}
