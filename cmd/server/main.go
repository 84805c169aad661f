package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"catalog-service/internal/api"
	"catalog-service/internal/auth"
	"catalog-service/internal/config"
	"catalog-service/internal/logger"
	"catalog-service/internal/metrics"
	"catalog-service/internal/service"
	"catalog-service/internal/store"
	"catalog-service/internal/tracing"
)

const serviceName = "catalog-service"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: .env file not found, relying on system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel, serviceName)
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}
	zap.ReplaceGlobals(zl)

	err = run(cfg, zl)
	if err != nil {
		zl.Error("service stopped with error", zap.Error(err))
	} else {
		zl.Info("service shutdown sequence finished")
	}
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg.Tracing.Exporter, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			zl.Warn("error flushing traces", zap.Error(err))
		}
	}()

	db, err := openDB(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	dbStore := store.NewPostgresStore(db)
	defer func() {
		if err := dbStore.Close(); err != nil {
			zl.Warn("error closing database", zap.Error(err))
		}
	}()
	zl.Info("database connection established",
		zap.String("host", cfg.Postgres.Host),
		zap.String("database", cfg.Postgres.DBName),
	)

	m := metrics.New("catalog")
	catalog := service.NewCatalogService(dbStore, service.WithMetrics(m))
	authService := auth.NewService(
		dbStore,
		auth.NewPasswordHasher(cfg.Auth.HashConcurrency, auth.DefaultArgon2Params),
		auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expire, cfg.JWT.Issuer),
		auth.WithMetrics(m),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(zl))
	router.Use(middleware.Recoverer)
	router.Use(m.Middleware)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Method(http.MethodGet, "/metrics", m.Handler())
	api.NewHTTPHandler(catalog, authService, dbStore, serviceName).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var grpcServer *grpc.Server
	if cfg.GrpcServer.Enabled {
		grpcServer = newGRPCServer(zl, catalog, !cfg.IsProduction())
		lis, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
		if err != nil {
			return err
		}
		g.Go(func() error {
			zl.Info("gRPC server listening", zap.String("port", cfg.GrpcServer.Port))
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("starting graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HttpServer.ShutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			defer func() {
				select {
				case <-stopped:
				case <-shutdownCtx.Done():
					zl.Warn("gRPC graceful stop timed out, forcing stop")
					grpcServer.Stop()
				}
			}()
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openDB(ctx context.Context, pc config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", pc.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(pc.MaxOpenConns)
	db.SetMaxIdleConns(pc.MaxIdleConns)
	db.SetConnMaxLifetime(pc.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newGRPCServer(zl *zap.Logger, catalog api.LookupService, withReflection bool) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(api.UnaryLoggingInterceptor(zl)))
	api.RegisterCatalogLookupServer(s, api.NewGRPCHandler(catalog))
	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	if withReflection {
		reflection.Register(s)
	}
	return s
}
