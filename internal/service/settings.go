package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
)

// UpdateSettingsParams merges non-nil fields into the stored settings.
type UpdateSettingsParams struct {
	BusinessName         *string
	Email                *string
	Phone                *string
	Address              *string
	Currency             *string
	LowStockThreshold    *int
	TaxRate              *decimal.Decimal
	NotificationSettings *model.NotificationSettings
}

type SettingsService interface {
	// GetSettings returns the stored settings, saving the defaults on first use.
	GetSettings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, params UpdateSettingsParams) (model.Settings, error)
}

type settingsService struct {
	db           db.DB
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(db db.DB, settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{
		db:           db,
		settingsRepo: settingsRepo,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		var err error
		settings, err = s.loadOrCreate(ctx, s.settingsRepo.WithDB(tx))
		return err
	}); err != nil {
		return model.Settings{}, fmt.Errorf("db with tx: %w", err)
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, params UpdateSettingsParams) (model.Settings, error) {
	var settings model.Settings
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		settingsRepo := s.settingsRepo.WithDB(tx)

		var err error
		settings, err = s.loadOrCreate(ctx, settingsRepo)
		if err != nil {
			return err
		}

		applySettings(&settings, params)
		settings.UpdatedAt = time.Now()

		if err := settingsRepo.UpsertSettings(ctx, settings); err != nil {
			return fmt.Errorf("settings repository upsert settings: %w", err)
		}
		return nil
	}); err != nil {
		return model.Settings{}, fmt.Errorf("db with tx: %w", err)
	}
	return settings, nil
}

func (s *settingsService) loadOrCreate(ctx context.Context, settingsRepo repository.SettingsRepository) (model.Settings, error) {
	settings, found, err := settingsRepo.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("settings repository get settings: %w", err)
	}
	if found {
		return settings, nil
	}

	settings = model.DefaultSettings()
	settings.UpdatedAt = time.Now()
	if err := settingsRepo.UpsertSettings(ctx, settings); err != nil {
		return model.Settings{}, fmt.Errorf("settings repository upsert settings: %w", err)
	}
	return settings, nil
}

func applySettings(s *model.Settings, p UpdateSettingsParams) {
	if p.BusinessName != nil {
		s.BusinessName = *p.BusinessName
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.LowStockThreshold != nil {
		s.LowStockThreshold = *p.LowStockThreshold
	}
	if p.TaxRate != nil {
		s.TaxRate = *p.TaxRate
	}
	if p.NotificationSettings != nil {
		s.NotificationSettings = *p.NotificationSettings
	}
}
