package http_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/internal/config"
	stockroomhttp "github.com/tuanvumaihuynh/stockroom/internal/http"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

type mockSaleService struct {
	service.SaleService
	postSale   func(context.Context, service.PostSaleParams) (model.Sale, error)
	getSale    func(context.Context, uuid.UUID) (model.Sale, error)
	listSales  func(context.Context, service.ListSalesParams) (service.ListSalesResult, error)
	updateSale func(context.Context, uuid.UUID, service.UpdateSaleParams) (model.Sale, error)
	deleteSale func(context.Context, uuid.UUID) error
}

func (m *mockSaleService) PostSale(ctx context.Context, p service.PostSaleParams) (model.Sale, error) {
	return m.postSale(ctx, p)
}

func (m *mockSaleService) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	return m.getSale(ctx, id)
}

func (m *mockSaleService) ListSales(ctx context.Context, p service.ListSalesParams) (service.ListSalesResult, error) {
	return m.listSales(ctx, p)
}

func (m *mockSaleService) UpdateSale(ctx context.Context, id uuid.UUID, p service.UpdateSaleParams) (model.Sale, error) {
	return m.updateSale(ctx, id, p)
}

func (m *mockSaleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return m.deleteSale(ctx, id)
}

type mockProductService struct {
	service.ProductService
	createProduct func(context.Context, service.ProductParams) (model.Product, error)
	listProducts  func(context.Context, service.ListProductsParams) (service.ListProductsResult, error)
	listDistinct  func(context.Context, repository.ProductField) ([]string, error)
	listLowStock  func(context.Context) ([]model.LowStockProduct, error)
}

func (m *mockProductService) CreateProduct(ctx context.Context, p service.ProductParams) (model.Product, error) {
	return m.createProduct(ctx, p)
}

func (m *mockProductService) ListProducts(ctx context.Context, p service.ListProductsParams) (service.ListProductsResult, error) {
	return m.listProducts(ctx, p)
}

func (m *mockProductService) ListDistinct(ctx context.Context, f repository.ProductField) ([]string, error) {
	return m.listDistinct(ctx, f)
}

func (m *mockProductService) ListLowStock(ctx context.Context) ([]model.LowStockProduct, error) {
	return m.listLowStock(ctx)
}

type mockBatchService struct {
	service.BatchService
	addStock      func(context.Context, []uuid.UUID, int) (service.BatchResult, error)
	decreasePrice func(context.Context, []uuid.UUID, decimal.Decimal) (service.BatchResult, error)
}

func (m *mockBatchService) AddStock(ctx context.Context, ids []uuid.UUID, qty int) (service.BatchResult, error) {
	return m.addStock(ctx, ids, qty)
}

func (m *mockBatchService) DecreasePrice(ctx context.Context, ids []uuid.UUID, pct decimal.Decimal) (service.BatchResult, error) {
	return m.decreasePrice(ctx, ids, pct)
}

type mockNotificationService struct {
	service.NotificationService
	markNotification func(context.Context, uuid.UUID, *bool) (model.Notification, error)
	listNotifications func(context.Context, service.ListNotificationsParams) (service.ListNotificationsResult, error)
}

func (m *mockNotificationService) MarkNotification(ctx context.Context, id uuid.UUID, isRead *bool) (model.Notification, error) {
	return m.markNotification(ctx, id, isRead)
}

func (m *mockNotificationService) ListNotifications(ctx context.Context, p service.ListNotificationsParams) (service.ListNotificationsResult, error) {
	return m.listNotifications(ctx, p)
}

type mockReportService struct {
	service.ReportService
	salesOverTime func(context.Context, service.DateRangeParams, model.Interval) ([]model.SalesBucket, error)
}

func (m *mockReportService) SalesOverTime(ctx context.Context, p service.DateRangeParams, i model.Interval) ([]model.SalesBucket, error) {
	return m.salesOverTime(ctx, p, i)
}

type mockHealthChecker struct {
	healthy bool
	err     error
}

func (m mockHealthChecker) IsHealthy(context.Context) (bool, error) {
	return m.healthy, m.err
}

type testServer struct {
	sales         *mockSaleService
	products      *mockProductService
	batch         *mockBatchService
	notifications *mockNotificationService
	reports       *mockReportService
	health        *mockHealthChecker
	tokens        map[string]string
}

func newTestServer() *testServer {
	return &testServer{
		sales:         &mockSaleService{},
		products:      &mockProductService{},
		batch:         &mockBatchService{},
		notifications: &mockNotificationService{},
		reports:       &mockReportService{},
		health:        &mockHealthChecker{healthy: true},
	}
}

func (ts *testServer) service(t *testing.T) *stockroomhttp.Service {
	t.Helper()

	svc, err := stockroomhttp.New(
		config.HTTP{Swagger: true, AllowedOrigins: []string{"*"}},
		config.Auth{Tokens: ts.tokens},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		stockroomhttp.Services{
			Sale:         ts.sales,
			Product:      ts.products,
			Batch:        ts.batch,
			Notification: ts.notifications,
			Report:       ts.reports,
			Health:       ts.health,
		},
	)
	require.NoError(t, err)
	return svc
}
