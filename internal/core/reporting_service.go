package core

import (
	"context"
	"fmt"
	"time"
)

// RecentSalesLimit caps SalesSummary.RecentSales.
const RecentSalesLimit = 5

// ReportingService reads back recorded orders.
type ReportingService interface {
	GetSale(ctx context.Context, tenantID, saleID string) (*Sale, error)
	GetPurchase(ctx context.Context, tenantID, purchaseID string) (*Purchase, error)
	// SalesSummary totals the sales recorded at or after since and lists the
	// latest of them.
	SalesSummary(ctx context.Context, tenantID string, since time.Time) (*SalesSummary, error)
}

type reportingService struct {
	store Reader
}

func NewReportingService(store Reader) ReportingService {
	return &reportingService{store: store}
}

func (s *reportingService) GetSale(ctx context.Context, tenantID, saleID string) (*Sale, error) {
	return s.store.GetSale(ctx, tenantID, saleID)
}

func (s *reportingService) GetPurchase(ctx context.Context, tenantID, purchaseID string) (*Purchase, error) {
	return s.store.GetPurchase(ctx, tenantID, purchaseID)
}

func (s *reportingService) SalesSummary(ctx context.Context, tenantID string, since time.Time) (*SalesSummary, error) {
	sales, err := s.store.ListSalesSince(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	sum := &SalesSummary{Since: since, SaleCount: len(sales), RecentSales: []Sale{}}
	for _, sale := range sales {
		sum.SubTotal = sum.SubTotal.Add(sale.SubTotal)
		sum.TotalTax = sum.TotalTax.Add(sale.TotalTax)
		sum.GrandTotal = sum.GrandTotal.Add(sale.GrandTotal)
	}
	for i := len(sales) - 1; i >= 0 && len(sum.RecentSales) < RecentSalesLimit; i-- {
		sum.RecentSales = append(sum.RecentSales, sales[i])
	}
	return sum, nil
}
