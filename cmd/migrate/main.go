// Command migrate applies the embedded schema migrations and exits.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"catalog-service/internal/config"
	"catalog-service/internal/logger"
	"catalog-service/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: .env file not found, relying on system environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel, "catalog-migrate")
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}

	err = run(cfg, zl)
	if err != nil {
		zl.Error("migration failed", zap.Error(err))
	}
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applied, err := store.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		zl.Info("schema is up to date")
		return nil
	}
	zl.Info("migrations applied", zap.Strings("versions", applied))
	return nil
}
