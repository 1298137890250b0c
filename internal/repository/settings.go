package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
)

type SettingsRepository interface {
	WithDB(db db.DB) SettingsRepository
	// GetSettings reports found=false when the singleton row was never written.
	GetSettings(ctx context.Context) (settings model.Settings, found bool, err error)
	UpsertSettings(ctx context.Context, settings model.Settings) error
}

type settingsRepository struct {
	db db.DB
}

func NewSettingsRepository(db db.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r settingsRepository) WithDB(db db.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r settingsRepository) GetSettings(ctx context.Context) (model.Settings, bool, error) {
	var s model.Settings
	err := r.db.QueryRow(ctx, `
		SELECT business_name, email, phone, address, currency, low_stock_threshold, tax_rate,
			notify_low_stock, notify_new_sales, notify_price_changes, updated_at
		FROM settings
	`).Scan(&s.BusinessName, &s.Email, &s.Phone, &s.Address, &s.Currency, &s.LowStockThreshold, &s.TaxRate,
		&s.NotificationSettings.LowStock, &s.NotificationSettings.NewSales, &s.NotificationSettings.PriceChanges,
		&s.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return model.Settings{}, false, nil
		}
		return model.Settings{}, false, fmt.Errorf("select settings: %w", err)
	}
	return s, true, nil
}

func (r settingsRepository) UpsertSettings(ctx context.Context, s model.Settings) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (
			business_name, email, phone, address, currency, low_stock_threshold, tax_rate,
			notify_low_stock, notify_new_sales, notify_price_changes, updated_at
		)
		VALUES (
			@business_name, @email, @phone, @address, @currency, @low_stock_threshold, @tax_rate,
			@notify_low_stock, @notify_new_sales, @notify_price_changes, @updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			business_name        = EXCLUDED.business_name,
			email                = EXCLUDED.email,
			phone                = EXCLUDED.phone,
			address              = EXCLUDED.address,
			currency             = EXCLUDED.currency,
			low_stock_threshold  = EXCLUDED.low_stock_threshold,
			tax_rate             = EXCLUDED.tax_rate,
			notify_low_stock     = EXCLUDED.notify_low_stock,
			notify_new_sales     = EXCLUDED.notify_new_sales,
			notify_price_changes = EXCLUDED.notify_price_changes,
			updated_at           = EXCLUDED.updated_at
	`, pgx.NamedArgs{
		"business_name":        s.BusinessName,
		"email":                s.Email,
		"phone":                s.Phone,
		"address":              s.Address,
		"currency":             s.Currency,
		"low_stock_threshold":  s.LowStockThreshold,
		"tax_rate":             s.TaxRate,
		"notify_low_stock":     s.NotificationSettings.LowStock,
		"notify_new_sales":     s.NotificationSettings.NewSales,
		"notify_price_changes": s.NotificationSettings.PriceChanges,
		"updated_at":           s.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
