package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
)

// DateRangeParams bounds a report. The range is only used when both ends are set.
type DateRangeParams struct {
	StartDate *time.Time
	EndDate   *time.Time
}

type ReportService interface {
	// Summary defaults to the current month.
	Summary(ctx context.Context, params DateRangeParams) (model.SalesSummary, error)
	// SalesOverTime defaults to the last 30 days grouped by day.
	SalesOverTime(ctx context.Context, params DateRangeParams, interval model.Interval) ([]model.SalesBucket, error)
	TopProducts(ctx context.Context, params DateRangeParams, limit int) ([]model.TopProduct, error)
	ProductProfits(ctx context.Context, params DateRangeParams) (model.ProductProfits, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

func (s *reportService) Summary(ctx context.Context, params DateRangeParams) (model.SalesSummary, error) {
	totals, err := s.reportRepo.SalesTotals(ctx, s.monthToDate(params))
	if err != nil {
		return model.SalesSummary{}, fmt.Errorf("report repository sales totals: %w", err)
	}

	products, err := s.reportRepo.CountProducts(ctx)
	if err != nil {
		return model.SalesSummary{}, fmt.Errorf("report repository count products: %w", err)
	}

	lowStock, err := s.reportRepo.CountLowStockVariants(ctx)
	if err != nil {
		return model.SalesSummary{}, fmt.Errorf("report repository count low stock variants: %w", err)
	}

	return model.SalesSummary{
		TotalSales:          totals.Count,
		TotalRevenue:        totals.Revenue,
		TotalProfit:         totals.Profit,
		AverageProfitMargin: model.Margin(totals.Profit, totals.Revenue),
		TotalProducts:       products,
		LowStockItems:       lowStock,
	}, nil
}

func (s *reportService) SalesOverTime(ctx context.Context, params DateRangeParams, interval model.Interval) ([]model.SalesBucket, error) {
	if interval == "" {
		interval = model.IntervalDay
	}

	dr, ok := explicitRange(params)
	if !ok {
		end := s.now()
		dr = repository.DateRange{Start: end.AddDate(0, 0, -30), End: end}
	}

	buckets, err := s.reportRepo.SalesOverTime(ctx, dr, interval)
	if err != nil {
		return nil, fmt.Errorf("report repository sales over time: %w", err)
	}
	return buckets, nil
}

func (s *reportService) TopProducts(ctx context.Context, params DateRangeParams, limit int) ([]model.TopProduct, error) {
	if limit < 1 {
		limit = 10
	}

	products, err := s.reportRepo.TopProducts(ctx, s.monthToDate(params), limit)
	if err != nil {
		return nil, fmt.Errorf("report repository top products: %w", err)
	}
	return products, nil
}

func (s *reportService) ProductProfits(ctx context.Context, params DateRangeParams) (model.ProductProfits, error) {
	variants, err := s.reportRepo.VariantProfits(ctx, s.monthToDate(params))
	if err != nil {
		return model.ProductProfits{}, fmt.Errorf("report repository variant profits: %w", err)
	}

	var (
		products []model.ProductProfit
		index    = map[uuid.UUID]int{}
	)
	for i := range variants {
		v := &variants[i]
		v.Margin = model.Margin(v.Profit, v.Revenue)

		j, ok := index[v.Product]
		if !ok {
			j = len(products)
			index[v.Product] = j
			products = append(products, model.ProductProfit{
				Product:     v.Product,
				ProductName: v.ProductName,
				Brand:       v.Brand,
				Category:    v.Category,
				Revenue:     decimal.Zero,
				Cost:        decimal.Zero,
				Profit:      decimal.Zero,
			})
		}

		p := &products[j]
		p.QuantitySold += v.QuantitySold
		p.Revenue = p.Revenue.Add(v.Revenue)
		p.Cost = p.Cost.Add(v.Cost)
		p.Profit = p.Profit.Add(v.Profit)
	}

	for i := range products {
		products[i].Margin = model.Margin(products[i].Profit, products[i].Revenue)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Profit.GreaterThan(products[j].Profit)
	})

	if products == nil {
		products = []model.ProductProfit{}
	}
	if variants == nil {
		variants = []model.ProductProfit{}
	}

	return model.ProductProfits{Products: products, Variants: variants}, nil
}

func (s *reportService) monthToDate(params DateRangeParams) repository.DateRange {
	if dr, ok := explicitRange(params); ok {
		return dr
	}
	now := s.now()
	return repository.DateRange{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		End:   now,
	}
}

func explicitRange(params DateRangeParams) (repository.DateRange, bool) {
	if params.StartDate == nil || params.EndDate == nil {
		return repository.DateRange{}, false
	}
	return repository.DateRange{Start: *params.StartDate, End: *params.EndDate}, true
}
