package http

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

type updateSettingsRequest struct {
	BusinessName         *string                     `json:"businessName" validate:"omitempty,min=1"`
	Email                *string                     `json:"email" validate:"omitempty,email"`
	Phone                *string                     `json:"phone"`
	Address              *string                     `json:"address"`
	Currency             *string                     `json:"currency" validate:"omitempty,len=3"`
	LowStockThreshold    *int                        `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	TaxRate              *decimal.Decimal            `json:"taxRate" validate:"omitempty,gte=0,lte=100"`
	NotificationSettings *model.NotificationSettings `json:"notificationSettings"`
}

func (s *Service) getSettings(w http.ResponseWriter, r *http.Request) error {
	settings, err := s.svcs.Settings.GetSettings(r.Context())
	if err != nil {
		return fmt.Errorf("settings service get settings: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, settings)
}

func (s *Service) updateSettings(w http.ResponseWriter, r *http.Request) error {
	var req updateSettingsRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	settings, err := s.svcs.Settings.UpdateSettings(r.Context(), service.UpdateSettingsParams{
		BusinessName:         req.BusinessName,
		Email:                req.Email,
		Phone:                req.Phone,
		Address:              req.Address,
		Currency:             req.Currency,
		LowStockThreshold:    req.LowStockThreshold,
		TaxRate:              req.TaxRate,
		NotificationSettings: req.NotificationSettings,
	})
	if err != nil {
		return fmt.Errorf("settings service update settings: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, settings)
}
