// Command seedadmin creates the first administrator from
// FIRST_SUPERUSER_EMAIL and FIRST_SUPERUSER_PASSWORD if it does not exist.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"catalog-service/internal/auth"
	"catalog-service/internal/config"
	"catalog-service/internal/logger"
	"catalog-service/internal/store"
)

var errAdminUnset = errors.New("FIRST_SUPERUSER_EMAIL and FIRST_SUPERUSER_PASSWORD must be set")

type adminSeeder interface {
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: .env file not found, relying on system environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel, "catalog-seedadmin")
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}

	err = run(cfg, zl)
	if err != nil {
		zl.Error("seed admin failed", zap.Error(err))
	}
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return errAdminUnset
	}

	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbStore := store.NewPostgresStore(db)
	defer func() {
		if err := dbStore.Close(); err != nil {
			zl.Warn("error closing database", zap.Error(err))
		}
	}()

	svc := auth.NewService(
		dbStore,
		auth.NewPasswordHasher(1, auth.DefaultArgon2Params),
		auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expire, cfg.JWT.Issuer),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return seed(ctx, svc, cfg.Admin, zl)
}

func seed(ctx context.Context, svc adminSeeder, admin config.AdminConfig, zl *zap.Logger) error {
	created, err := svc.EnsureAdmin(ctx, admin.Email, admin.Password)
	if err != nil {
		return err
	}
	if created {
		zl.Info("administrator created", zap.String("email", admin.Email))
		return nil
	}
	zl.Info("administrator already exists", zap.String("email", admin.Email))
	return nil
}
