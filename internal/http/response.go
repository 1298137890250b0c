package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/http/apierr"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// messageResponse is returned by routes that have no resource to return.
type messageResponse struct {
	Message string `json:"message"`
}

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WarnContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
	return nil
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

// decodeBody decodes the JSON body into dst and validates it.
// An empty body is accepted when allowEmpty is set.
func (s *Service) decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.ValidationErr.WrapParent(err).WithMsg("invalid request body")
	}

	return s.validator.Validate(dst)
}

func pathID(r *http.Request, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WrapParent(err).WithMsgf("invalid %s id", resource)
	}
	return id, nil
}

// queryParam binds an optional form-style query parameter. It returns nil when absent.
func queryParam[T any](r *http.Request, name string) (*T, error) {
	var v *T
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, apperr.ValidationErr.WrapParent(err).WithMsgf("invalid query parameter %s", name)
	}
	return v, nil
}

// queryValue is queryParam returning the zero value when absent.
func queryValue[T any](r *http.Request, name string) (T, error) {
	v, err := queryParam[T](r, name)
	if err != nil || v == nil {
		var zero T
		return zero, err
	}
	return *v, nil
}

// dateQuery parses an optional date parameter given as RFC 3339 or YYYY-MM-DD (UTC midnight).
func dateQuery(r *http.Request, name string) (*time.Time, error) {
	raw, err := queryParam[string](r, name)
	if err != nil {
		return nil, err
	}
	if raw == nil || *raw == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, *raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	return nil, apperr.ValidationErr.WithMsgf("invalid query parameter %s: expected a date", name)
}

type pageQuery struct {
	Page  int
	Limit int
}

func bindPage(r *http.Request) (pageQuery, error) {
	page, err := queryValue[int](r, "page")
	if err != nil {
		return pageQuery{}, err
	}
	if page > service.MaxPage {
		return pageQuery{}, apperr.ValidationErr.WithMsgf("invalid query parameter page: must be at most %d", service.MaxPage)
	}
	limit, err := queryValue[int](r, "limit")
	if err != nil {
		return pageQuery{}, err
	}
	return pageQuery{Page: page, Limit: limit}, nil
}

// orEmpty keeps list responses encoded as [] instead of null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
