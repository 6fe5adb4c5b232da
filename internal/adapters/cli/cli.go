package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pharmacy-erp/internal/app"
	"pharmacy-erp/internal/core"
)

const usage = "Available: stock [batch-id], search <term>, sell, purchase, low-stock, expiring [days], summary [YYYY-MM-DD]"

// Run executes a one-shot CLI command against tenantID.
// args is os.Args[1:]; the first element is the subcommand name.
// sell and purchase read a JSON document from in.
func Run(ctx context.Context, svc app.ApplicationService, tenantID string, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	if tenantID == "" {
		return fmt.Errorf("TENANT_ID is not set")
	}

	switch args[0] {
	case "stock", "st":
		if len(args) > 1 {
			result, err := svc.GetBatchStock(ctx, tenantID, args[1])
			if err != nil {
				return fmt.Errorf("failed to get batch stock: %w", err)
			}
			fmt.Fprintf(out, "%s %s expires %s: %d units\n", result.Batch.ID, result.Batch.BatchNumber,
				result.Batch.ExpiryDate.Format("2006-01-02"), result.Stock)
			return nil
		}
		result, err := svc.GetStockLevels(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to get stock levels: %w", err)
		}
		printStock(out, result.Levels)

	case "search", "s":
		if len(args) < 2 {
			return fmt.Errorf("usage: app search <drug>")
		}
		result, err := svc.SearchMedicines(ctx, tenantID, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		for _, m := range result.Medicines {
			fmt.Fprintf(out, "%s (%s) total %d\n", m.BrandName, m.ID, m.TotalStock)
			printStock(out, m.Batches)
		}

	case "sell":
		var req struct {
			StaffID    string               `json:"staff_id"`
			CustomerID string               `json:"customer_id"`
			Items      []core.SaleLineInput `json:"items"`
		}
		if err := json.NewDecoder(in).Decode(&req); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		result, err := svc.CreateSale(ctx, app.CreateSaleRequest{
			TenantID:   tenantID,
			StaffID:    req.StaffID,
			CustomerID: req.CustomerID,
			Lines:      req.Items,
		})
		if err != nil {
			return fmt.Errorf("sale failed: %w", err)
		}
		return encode(out, result.Sale)

	case "purchase":
		var req struct {
			SupplierID string                   `json:"supplier_id"`
			Items      []core.PurchaseLineInput `json:"items"`
		}
		if err := json.NewDecoder(in).Decode(&req); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		result, err := svc.CreatePurchase(ctx, app.CreatePurchaseRequest{
			TenantID:   tenantID,
			SupplierID: req.SupplierID,
			Lines:      req.Items,
		})
		if err != nil {
			return fmt.Errorf("purchase failed: %w", err)
		}
		return encode(out, result.Purchase)

	case "low-stock", "low":
		result, err := svc.GetLowStock(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to get low stock: %w", err)
		}
		fmt.Fprintf(out, "  threshold %d\n", result.Threshold)
		for _, it := range result.Items {
			fmt.Fprintf(out, "  %-8s %-30s %8d\n", strings.ToUpper(it.Urgency), it.BrandName, it.TotalStock)
		}

	case "expiring", "exp":
		days := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("days must be a non-negative integer, got %q", args[1])
			}
			days = n
		}
		result, err := svc.GetExpiringBatches(ctx, tenantID, days)
		if err != nil {
			return fmt.Errorf("failed to get expiring batches: %w", err)
		}
		fmt.Fprintf(out, "  expiring within %d days\n", result.WithinDays)
		printStock(out, result.Batches)

	case "summary":
		since := ""
		if len(args) > 1 {
			since = args[1]
		}
		result, err := svc.GetSalesSummary(ctx, tenantID, since)
		if err != nil {
			return fmt.Errorf("failed to get sales summary: %w", err)
		}
		fmt.Fprintf(out, "  since %s: %d sales, subtotal %s, tax %s, total %s\n",
			result.Since.Format("2006-01-02"), result.SaleCount,
			result.SubTotal.StringFixed(2), result.TotalTax.StringFixed(2), result.GrandTotal.StringFixed(2))
		for _, sale := range result.RecentSales {
			fmt.Fprintf(out, "  %s  %s  %-24s %12s\n", sale.CreatedAt.Format("2006-01-02 15:04"),
				sale.StaffID, sale.ID, sale.GrandTotal.StringFixed(2))
		}

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
	return nil
}

func encode(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStock(out io.Writer, levels []core.BatchStock) {
	fmt.Fprintln(out, strings.Repeat("=", 78))
	fmt.Fprintf(out, "  %-24s %-14s %-10s %10s %12s\n", "MEDICINE", "BATCH", "EXPIRY", "STOCK", "PRICE")
	fmt.Fprintln(out, strings.Repeat("-", 78))
	for _, l := range levels {
		fmt.Fprintf(out, "  %-24s %-14s %-10s %10d %12s\n",
			l.MedicineName, l.BatchNumber, l.ExpiryDate.Format("2006-01-02"), l.Stock, l.PricePerUnit.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("=", 78))
}
