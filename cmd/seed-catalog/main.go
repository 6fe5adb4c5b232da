// seed-catalog loads a tenant's opening catalog and stock from a CSV file.
//
// Usage: go run ./cmd/seed-catalog catalog.csv [supplier-id]
package main

import (
	"context"
	"log"
	"os"

	"pharmacy-erp/internal/app"
	"pharmacy-erp/internal/config"
	"pharmacy-erp/internal/db"
	"pharmacy-erp/internal/seed"
	"pharmacy-erp/internal/store/postgres"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: seed-catalog <catalog.csv> [supplier-id]")
	}
	if cfg.DefaultTenantID == "" {
		log.Fatal("TENANT_ID is not set")
	}
	supplierID := "opening-stock"
	if len(os.Args) > 2 {
		supplierID = os.Args[2]
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer file.Close()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	svc := app.New(postgres.New(pool), nil, nil, app.Options{})
	stats, err := seed.LoadCatalog(ctx, svc, cfg.DefaultTenantID, supplierID, file)
	if err != nil {
		log.Fatalf("Seed failed after %d medicines, %d batches: %v", stats.Medicines, stats.Batches, err)
	}
	log.Printf("Seeded tenant %s: %d medicines, %d batches, %d opening purchases, %d rows skipped",
		cfg.DefaultTenantID, stats.Medicines, stats.Batches, stats.Purchases, stats.Skipped)
}
