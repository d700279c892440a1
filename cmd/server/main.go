package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/auth"
	"github.com/diewo77/partner-admin/internal/config"
	"github.com/diewo77/partner-admin/internal/db"
	"github.com/diewo77/partner-admin/internal/logger"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	slog := zl.Sugar()

	dbConn, err := connectDB(cfg.Database)
	if err != nil {
		slog.Fatalw("database connection failed", "error", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			slog.Fatalw("migration failed", "error", err)
		}
		slog.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			slog.Fatalw("seeding failed", "error", err)
		}
		slog.Info("seeding completed")
		return
	}

	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			slog.Fatalw("migration failed", "error", err)
		}
		slog.Info("migrations completed")
	}
	if err := db.Seed(dbConn); err != nil {
		slog.Fatalw("seeding failed", "error", err)
	}

	// Sessions whose user row disappeared are cleared on the next request.
	auth.SetUserVerifier(db.UserVerifier(dbConn))

	appHandler := NewApp(dbConn, db.SQLFuncs{}, slog)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		slog.Infow("server starting", "port", cfg.Server.Port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Errorw("shutdown error", "error", err)
	}
	slog.Info("server stopped gracefully")
}

// connectDB establishes the PostgreSQL connection from config.
func connectDB(dbCfg config.DatabaseConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dbCfg.DSN()), &gorm.Config{TranslateError: true})
}
