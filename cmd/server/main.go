package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "pharmacy-erp/internal/adapters/web"
	"pharmacy-erp/internal/app"
	"pharmacy-erp/internal/config"
	"pharmacy-erp/internal/core"
	"pharmacy-erp/internal/db"
	"pharmacy-erp/internal/events"
	"pharmacy-erp/internal/store/postgres"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if c, ok := publisher.(io.Closer); ok {
		defer c.Close()
	}

	allocator := core.NewAllocator(core.AllocationPolicy(cfg.AllocationPolicy), cfg.SkipExpired)
	svc := app.New(postgres.New(pool), allocator, publisher, app.Options{
		LowStockThreshold: cfg.LowStockThreshold,
		ExpiryWindowDays:  cfg.ExpiryWindowDays,
	})

	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		BodyLimit:      cfg.RequestBodyLimitByte,
		Ping:           pool.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("server starting on :%s (allocation %s)", cfg.ServerPort, cfg.AllocationPolicy)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}
	log.Println("server stopped")
}
