package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/stockroom/internal/config"
	"github.com/tuanvumaihuynh/stockroom/internal/http/metric"
	"github.com/tuanvumaihuynh/stockroom/internal/http/middleware"
	"github.com/tuanvumaihuynh/stockroom/internal/http/swagger"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
	"github.com/tuanvumaihuynh/stockroom/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Services are the application services exposed over HTTP.
type Services struct {
	Sale         service.SaleService
	Product      service.ProductService
	Batch        service.BatchService
	Notification service.NotificationService
	Report       service.ReportService
	Settings     service.SettingsService
	Health       db.HealthChecker
}

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	authCfg   config.Auth
	logger    *slog.Logger
	metrics   *metric.Metrics
	validator validator.Validator

	svcs Services
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	authCfg config.Auth,
	log *slog.Logger,
	svcs Services,
) (*Service, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	return &Service{
		cfg:       cfg,
		authCfg:   authCfg,
		logger:    log.With(slog.String("service", "http")),
		metrics:   metric.New(),
		validator: v,
		svcs:      svcs,
	}, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() chi.Router {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
	r.Get("/healthz", s.handle(s.healthz))

	member := middleware.RequireRole(middleware.RoleMember)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.authCfg.Tokens))

		r.Route("/sales", func(r chi.Router) {
			r.With(member).Post("/", s.handle(s.postSale))
			r.With(member).Get("/", s.handle(s.listSales))
			r.With(member).Get("/{id}", s.handle(s.getSale))
			r.With(member).Put("/{id}", s.handle(s.updateSale))
			r.With(admin).Delete("/{id}", s.handle(s.deleteSale))
		})

		r.Route("/products", func(r chi.Router) {
			r.With(member).Get("/", s.handle(s.listProducts))
			r.With(admin).Post("/", s.handle(s.createProduct))
			r.With(member).Get("/low-stock", s.handle(s.listLowStock))
			r.With(member).Get("/categories", s.handle(s.listDistinct(repository.ProductFieldCategory)))
			r.With(member).Get("/brands", s.handle(s.listDistinct(repository.ProductFieldBrand)))
			r.With(member).Get("/suppliers", s.handle(s.listDistinct(repository.ProductFieldSupplier)))
			r.With(member).Get("/{id}", s.handle(s.getProduct))
			r.With(admin).Put("/{id}", s.handle(s.updateProduct))
			r.With(admin).Delete("/{id}", s.handle(s.deleteProduct))
		})

		r.Route("/batch", func(r chi.Router) {
			r.Use(admin)
			r.Post("/add-stock", s.handle(s.addStock))
			r.Post("/mark-out-of-stock", s.handle(s.markOutOfStock))
			r.Post("/decrease-price", s.handle(s.decreasePrice))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(member)
			r.Get("/", s.handle(s.listNotifications))
			r.Put("/", s.handle(s.updateNotifications))
			r.Put("/{id}", s.handle(s.markNotification))
			r.Delete("/{id}", s.handle(s.deleteNotification))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(admin)
			r.Get("/summary", s.handle(s.salesSummary))
			r.Get("/sales-over-time", s.handle(s.salesOverTime))
			r.Get("/top-products", s.handle(s.topProducts))
			r.Get("/product-profits", s.handle(s.productProfits))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", s.handle(s.getSettings))
			r.Put("/", s.handle(s.updateSettings))
		})
	})
}
