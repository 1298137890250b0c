package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

func bindDateRange(r *http.Request) (service.DateRangeParams, error) {
	start, err := dateQuery(r, "startDate")
	if err != nil {
		return service.DateRangeParams{}, err
	}
	end, err := dateQuery(r, "endDate")
	if err != nil {
		return service.DateRangeParams{}, err
	}
	return service.DateRangeParams{StartDate: start, EndDate: end}, nil
}

func (s *Service) salesSummary(w http.ResponseWriter, r *http.Request) error {
	dr, err := bindDateRange(r)
	if err != nil {
		return err
	}

	summary, err := s.svcs.Report.Summary(r.Context(), dr)
	if err != nil {
		return fmt.Errorf("report service summary: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, summary)
}

func (s *Service) salesOverTime(w http.ResponseWriter, r *http.Request) error {
	dr, err := bindDateRange(r)
	if err != nil {
		return err
	}

	interval, err := queryValue[model.Interval](r, "interval")
	if err != nil {
		return err
	}
	if interval == "" {
		interval = model.IntervalDay
	}
	if err := interval.Validate(); err != nil {
		return apperr.ValidationErr.WrapParent(err).WithMsgf("invalid interval %q", interval)
	}

	buckets, err := s.svcs.Report.SalesOverTime(r.Context(), dr, interval)
	if err != nil {
		return fmt.Errorf("report service sales over time: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, orEmpty(buckets))
}

func (s *Service) topProducts(w http.ResponseWriter, r *http.Request) error {
	dr, err := bindDateRange(r)
	if err != nil {
		return err
	}

	limit, err := queryParam[int](r, "limit")
	if err != nil {
		return err
	}
	n := 10
	if limit != nil && *limit > 0 {
		n = min(*limit, 100)
	}

	products, err := s.svcs.Report.TopProducts(r.Context(), dr, n)
	if err != nil {
		return fmt.Errorf("report service top products: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, orEmpty(products))
}

func (s *Service) productProfits(w http.ResponseWriter, r *http.Request) error {
	dr, err := bindDateRange(r)
	if err != nil {
		return err
	}

	profits, err := s.svcs.Report.ProductProfits(r.Context(), dr)
	if err != nil {
		return fmt.Errorf("report service product profits: %w", err)
	}

	profits.Products = orEmpty(profits.Products)
	profits.Variants = orEmpty(profits.Variants)
	return s.writeJSON(w, r, http.StatusOK, profits)
}
