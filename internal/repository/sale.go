package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
)

const saleInvoiceNumberConstraint = "sales_invoice_number_key"

type ListSalesParams struct {
	Search        string
	StartDate     *time.Time
	EndDate       *time.Time
	PaymentStatus model.PaymentStatus
	Offset        int
	Limit         int
}

type SaleRepository interface {
	WithDB(db db.DB) SaleRepository
	CountSales(ctx context.Context) (int64, error)
	CreateSale(ctx context.Context, sale model.Sale) error
	// GetSale returns the sale with ProductInfo filled for items whose product still exists.
	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, int64, error)
	// UpdateSaleMeta writes the descriptive fields only. Items and totals are never rewritten.
	UpdateSaleMeta(ctx context.Context, sale model.Sale) error
	DeleteSale(ctx context.Context, id uuid.UUID) error
}

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) WithDB(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) CountSales(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return count, nil
}

func (r saleRepository) CreateSale(ctx context.Context, sale model.Sale) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO sales (
			id, invoice_number, customer, total_amount, total_profit, payment_method,
			payment_status, flag_status, notes, created_at, updated_at
		)
		VALUES (
			@id, @invoice_number, @customer, @total_amount, @total_profit, @payment_method,
			@payment_status, @flag_status, @notes, @created_at, @updated_at
		)
	`, pgx.NamedArgs{
		"id":             sale.ID,
		"invoice_number": sale.InvoiceNumber,
		"customer":       sale.Customer,
		"total_amount":   sale.TotalAmount,
		"total_profit":   sale.TotalProfit,
		"payment_method": sale.PaymentMethod,
		"payment_status": string(sale.PaymentStatus),
		"flag_status":    string(sale.FlagStatus),
		"notes":          sale.Notes,
		"created_at":     sale.CreatedAt,
		"updated_at":     sale.UpdatedAt,
	})
	for i, item := range sale.Items {
		batch.Queue(`
			INSERT INTO sale_items (
				sale_id, position, product_id, variant, quantity,
				cost_price, selling_price, actual_selling_price, profit
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, sale.ID, i, item.Product, item.Variant, item.Quantity,
			item.CostPrice, item.SellingPrice, item.ActualSellingPrice, item.Profit)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		if db.IsUniqueViolation(err, saleInvoiceNumberConstraint) {
			return apperr.DuplicateInvoiceErr.
				WithMsgf("invoice number %q already exists", sale.InvoiceNumber).
				WrapParent(err)
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

const selectSaleColumns = `id, invoice_number, customer, total_amount, total_profit, payment_method,
	payment_status, flag_status, notes, created_at, updated_at`

func (r saleRepository) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sale, err := scanSale(r.db.QueryRow(ctx, `SELECT `+selectSaleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return model.Sale{}, apperr.SaleNotFoundErr.WithMsgf("sale %s not found", id)
		}
		return model.Sale{}, fmt.Errorf("select sale: %w", err)
	}

	sales, err := r.attachItems(ctx, []model.Sale{sale})
	if err != nil {
		return model.Sale{}, err
	}

	return sales[0], nil
}

func (r saleRepository) ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, int64, error) {
	const filter = `
		WHERE (@search = '' OR invoice_number ILIKE '%' || @search || '%' OR customer ILIKE '%' || @search || '%')
			AND (@start_date::timestamptz IS NULL OR created_at >= @start_date::timestamptz)
			AND (@end_date::timestamptz IS NULL OR created_at <= @end_date::timestamptz)
			AND (@payment_status = '' OR payment_status = @payment_status)
	`
	args := pgx.NamedArgs{
		"search":         params.Search,
		"start_date":     params.StartDate,
		"end_date":       params.EndDate,
		"payment_status": string(params.PaymentStatus),
		"offset":         params.Offset,
		"limit":          params.Limit,
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales `+filter, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+selectSaleColumns+`
		FROM sales `+filter+`
		ORDER BY created_at DESC, id
		OFFSET @offset LIMIT @limit
	`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("select sales: %w", err)
	}

	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Sale, error) {
		return scanSale(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("collect sales: %w", err)
	}

	sales, err = r.attachItems(ctx, sales)
	if err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func (r saleRepository) UpdateSaleMeta(ctx context.Context, sale model.Sale) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sales
		SET customer = @customer, payment_method = @payment_method, payment_status = @payment_status,
			flag_status = @flag_status, notes = @notes, updated_at = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":             sale.ID,
		"customer":       sale.Customer,
		"payment_method": sale.PaymentMethod,
		"payment_status": string(sale.PaymentStatus),
		"flag_status":    string(sale.FlagStatus),
		"notes":          sale.Notes,
		"updated_at":     sale.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.SaleNotFoundErr.WithMsgf("sale %s not found", sale.ID)
	}
	return nil
}

func (r saleRepository) DeleteSale(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.SaleNotFoundErr.WithMsgf("sale %s not found", id)
	}
	return nil
}

func (r saleRepository) attachItems(ctx context.Context, sales []model.Sale) ([]model.Sale, error) {
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]uuid.UUID, 0, len(sales))
	index := make(map[uuid.UUID]int, len(sales))
	for i, s := range sales {
		ids = append(ids, s.ID)
		index[s.ID] = i
		sales[i].Items = []model.SaleItem{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT i.sale_id, i.product_id, i.variant, i.quantity, i.cost_price, i.selling_price,
			i.actual_selling_price, i.profit, p.name, p.brand, p.category
		FROM sale_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.sale_id = ANY(@ids::uuid[])
		ORDER BY i.sale_id, i.position
	`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("select sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			saleID                uuid.UUID
			item                  model.SaleItem
			name, brand, category *string
		)
		if err := rows.Scan(&saleID, &item.Product, &item.Variant, &item.Quantity, &item.CostPrice,
			&item.SellingPrice, &item.ActualSellingPrice, &item.Profit, &name, &brand, &category); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		if name != nil {
			item.ProductInfo = &model.ProductSummary{
				Name:     *name,
				Brand:    deref(brand),
				Category: deref(category),
			}
		}

		i := index[saleID]
		sales[i].Items = append(sales[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}

	return sales, nil
}

func scanSale(row pgx.Row) (model.Sale, error) {
	var (
		s             model.Sale
		paymentStatus string
		flagStatus    string
	)
	err := row.Scan(&s.ID, &s.InvoiceNumber, &s.Customer, &s.TotalAmount, &s.TotalProfit, &s.PaymentMethod,
		&paymentStatus, &flagStatus, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	s.PaymentStatus = model.PaymentStatus(paymentStatus)
	s.FlagStatus = model.FlagStatus(flagStatus)
	return s, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
