package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
)

type DateRange struct {
	Start time.Time
	End   time.Time
}

type SalesTotals struct {
	Count   int64
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

type ReportRepository interface {
	WithDB(db db.DB) ReportRepository
	SalesTotals(ctx context.Context, r DateRange) (SalesTotals, error)
	CountProducts(ctx context.Context) (int64, error)
	CountLowStockVariants(ctx context.Context) (int64, error)
	SalesOverTime(ctx context.Context, r DateRange, interval model.Interval) ([]model.SalesBucket, error)
	TopProducts(ctx context.Context, r DateRange, limit int) ([]model.TopProduct, error)
	VariantProfits(ctx context.Context, r DateRange) ([]model.ProductProfit, error)
}

type reportRepository struct {
	db db.DB
}

func NewReportRepository(db db.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r reportRepository) WithDB(db db.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r reportRepository) SalesTotals(ctx context.Context, dr DateRange) (SalesTotals, error) {
	var totals SalesTotals
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(total_profit), 0)
		FROM sales
		WHERE created_at BETWEEN @start AND @end
	`, pgx.NamedArgs{"start": dr.Start, "end": dr.End}).Scan(&totals.Count, &totals.Revenue, &totals.Profit)
	if err != nil {
		return SalesTotals{}, fmt.Errorf("sum sales: %w", err)
	}
	return totals, nil
}

func (r reportRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r reportRepository) CountLowStockVariants(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM product_variants WHERE current_stock <= low_stock_threshold
	`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count low stock variants: %w", err)
	}
	return count, nil
}

const saleTime = `(created_at AT TIME ZONE 'UTC')`

// periodExprs label buckets. Weeks start on Sunday and are numbered 00-53
// within the year, days before the first Sunday falling in week 00.
var periodExprs = map[model.Interval]string{
	model.IntervalDay: `to_char(` + saleTime + `, 'YYYY-MM-DD')`,
	model.IntervalWeek: `to_char(` + saleTime + `, 'YYYY') || '-W' || lpad(((extract(doy FROM ` + saleTime +
		`)::int + 6 - extract(dow FROM ` + saleTime + `)::int) / 7)::text, 2, '0')`,
	model.IntervalMonth: `to_char(` + saleTime + `, 'YYYY-MM')`,
	model.IntervalYear:  `to_char(` + saleTime + `, 'YYYY')`,
}

func (r reportRepository) SalesOverTime(ctx context.Context, dr DateRange, interval model.Interval) ([]model.SalesBucket, error) {
	period, ok := periodExprs[interval]
	if !ok {
		return nil, fmt.Errorf("unknown interval: %s", interval)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+period+` AS period,
			SUM(total_amount), SUM(total_profit), COUNT(*)
		FROM sales
		WHERE created_at BETWEEN @start AND @end
		GROUP BY period
		ORDER BY period
	`, pgx.NamedArgs{"start": dr.Start, "end": dr.End})
	if err != nil {
		return nil, fmt.Errorf("select sales over time: %w", err)
	}

	buckets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SalesBucket, error) {
		var b model.SalesBucket
		err := row.Scan(&b.Period, &b.Revenue, &b.Profit, &b.Count)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect sales over time: %w", err)
	}

	return buckets, nil
}

func (r reportRepository) TopProducts(ctx context.Context, dr DateRange, limit int) ([]model.TopProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.product_id, i.variant, COALESCE(p.name, ''), COALESCE(p.brand, ''), COALESCE(p.category, ''),
			SUM(i.quantity), SUM(i.actual_selling_price * i.quantity), SUM(i.profit)
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		LEFT JOIN products p ON p.id = i.product_id
		WHERE s.created_at BETWEEN @start AND @end
		GROUP BY i.product_id, i.variant, p.name, p.brand, p.category
		ORDER BY SUM(i.quantity) DESC, i.product_id, i.variant
		LIMIT @limit
	`, pgx.NamedArgs{"start": dr.Start, "end": dr.End, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("select top products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TopProduct, error) {
		var p model.TopProduct
		err := row.Scan(&p.Product, &p.Variant, &p.ProductName, &p.Brand, &p.Category,
			&p.QuantitySold, &p.Revenue, &p.Profit)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect top products: %w", err)
	}

	return products, nil
}

// VariantProfits aggregates sold items per variant that still exists in the catalog.
func (r reportRepository) VariantProfits(ctx context.Context, dr DateRange) ([]model.ProductProfit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.product_id, p.name, p.brand, p.category, i.variant, v.sku,
			SUM(i.quantity), SUM(i.actual_selling_price * i.quantity), SUM(i.cost_price * i.quantity), SUM(i.profit)
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		JOIN products p ON p.id = i.product_id
		JOIN product_variants v ON v.product_id = i.product_id AND v.name = i.variant
		WHERE s.created_at BETWEEN @start AND @end
		GROUP BY i.product_id, p.name, p.brand, p.category, i.variant, v.sku
		ORDER BY SUM(i.profit) DESC, i.product_id, i.variant
	`, pgx.NamedArgs{"start": dr.Start, "end": dr.End})
	if err != nil {
		return nil, fmt.Errorf("select variant profits: %w", err)
	}

	profits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ProductProfit, error) {
		var p model.ProductProfit
		err := row.Scan(&p.Product, &p.ProductName, &p.Brand, &p.Category, &p.Variant, &p.SKU,
			&p.QuantitySold, &p.Revenue, &p.Cost, &p.Profit)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect variant profits: %w", err)
	}

	return profits, nil
}
