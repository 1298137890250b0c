package http

import (
	"log/slog"
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) error {
	if s.svcs.Health != nil {
		if ok, err := s.svcs.Health.IsHealthy(r.Context()); !ok {
			s.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
			return s.writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		}
	}

	return s.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}
