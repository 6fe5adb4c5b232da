package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"pharmacy-erp/internal/adapters/cli"
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

	if len(os.Args) < 2 {
		log.Fatal("Usage: app <command> [args]\nCommands: stock, search, sell, purchase, low-stock, expiring, summary, token <staff-id> [role]")
	}

	// token only signs locally and needs no database.
	if os.Args[1] == "token" {
		issueToken(cfg, os.Args[2:])
		return
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if c, ok := publisher.(io.Closer); ok {
		defer c.Close()
	}

	allocator := core.NewAllocator(core.AllocationPolicy(cfg.AllocationPolicy), cfg.SkipExpired)
	svc := app.New(postgres.New(pool), allocator, publisher, app.Options{
		LowStockThreshold: cfg.LowStockThreshold,
		ExpiryWindowDays:  cfg.ExpiryWindowDays,
	})

	if err := cli.Run(ctx, svc, cfg.DefaultTenantID, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func issueToken(cfg config.Config, args []string) {
	if cfg.JWTSecret == "" || cfg.DefaultTenantID == "" {
		log.Fatal("JWT_SECRET and TENANT_ID must be set")
	}
	if len(args) < 1 {
		log.Fatal("Usage: app token <staff-id> [role]")
	}
	role := "pharmacist"
	if len(args) > 1 {
		role = args[1]
	}
	token, err := webAdapter.IssueToken(cfg.JWTSecret, webAdapter.AuthClaims{
		TenantID: cfg.DefaultTenantID,
		StaffID:  args[0],
		Role:     role,
	}, 12*time.Hour)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
