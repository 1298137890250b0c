package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/notification"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
)

// fakeStore is the whole in-memory database. WithTx works on a copy and
// swaps it in only when the transaction function succeeds.
type fakeStore struct {
	products      map[uuid.UUID]model.Product
	sales         []model.Sale
	outbox        []repository.CreateOutboxMsgParams
	notifications []model.Notification
	settings      *model.Settings
}

func (s *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		products:      make(map[uuid.UUID]model.Product, len(s.products)),
		sales:         make([]model.Sale, 0, len(s.sales)),
		outbox:        slices.Clone(s.outbox),
		notifications: slices.Clone(s.notifications),
	}
	for id, p := range s.products {
		c.products[id] = cloneProduct(p)
	}
	for _, sale := range s.sales {
		sale.Items = slices.Clone(sale.Items)
		c.sales = append(c.sales, sale)
	}
	if s.settings != nil {
		settings := *s.settings
		c.settings = &settings
	}
	return c
}

func cloneProduct(p model.Product) model.Product {
	p.Variants = slices.Clone(p.Variants)
	return p
}

type fakeDB struct {
	db.DB

	mu      *sync.Mutex
	store   *fakeStore
	commits int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		mu:    &sync.Mutex{},
		store: &fakeStore{products: map[uuid.UUID]model.Product{}},
	}
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx := &fakeDB{mu: &sync.Mutex{}, store: f.store.clone()}
	if err := txFunc(tx); err != nil {
		return err
	}

	*f.store = *tx.store
	f.commits++
	return nil
}

func storeOf(d db.DB) *fakeStore {
	return d.(*fakeDB).store
}

func (f *fakeDB) addProduct(p model.Product) {
	f.store.products[p.ID] = cloneProduct(p)
}

func (f *fakeDB) product(id uuid.UUID) model.Product {
	return cloneProduct(f.store.products[id])
}

func (f *fakeDB) stock(id uuid.UUID, variant string) int {
	p := f.store.products[id]
	return p.Variants[p.VariantIndex(variant)].CurrentStock
}

type fakeProductRepo struct {
	store *fakeStore

	// updateStockErr, when set, is consulted before every stock write.
	updateStockErr *func(params repository.UpdateVariantStockParams) error
}

func newFakeProductRepo(d *fakeDB) *fakeProductRepo {
	var hook func(repository.UpdateVariantStockParams) error
	return &fakeProductRepo{store: d.store, updateStockErr: &hook}
}

func (r *fakeProductRepo) WithDB(d db.DB) repository.ProductRepository {
	return &fakeProductRepo{store: storeOf(d), updateStockErr: r.updateStockErr}
}

func (r *fakeProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	r.store.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *fakeProductRepo) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) GetProductForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.GetProduct(ctx, id)
}

func (r *fakeProductRepo) ListProductsForUpdate(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			products = append(products, cloneProduct(p))
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID.String() < products[j].ID.String() })
	return products, nil
}

func (r *fakeProductRepo) ListProducts(_ context.Context, params repository.ListProductsParams) ([]model.Product, int64, error) {
	var products []model.Product
	for _, p := range r.store.products {
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			continue
		}
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		products = append(products, cloneProduct(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })

	total := int64(len(products))
	start := min(params.Offset, len(products))
	end := min(start+params.Limit, len(products))
	return products[start:end], total, nil
}

func (r *fakeProductRepo) UpdateProduct(_ context.Context, product model.Product) error {
	if _, ok := r.store.products[product.ID]; !ok {
		return apperr.ProductNotFoundErr
	}
	r.store.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *fakeProductRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.products[id]; !ok {
		return apperr.ProductNotFoundErr
	}
	delete(r.store.products, id)
	return nil
}

func (r *fakeProductRepo) UpdateVariantStock(_ context.Context, params repository.UpdateVariantStockParams) error {
	if hook := *r.updateStockErr; hook != nil {
		if err := hook(params); err != nil {
			return err
		}
	}

	p, ok := r.store.products[params.ProductID]
	if !ok {
		return apperr.ProductNotFoundErr
	}
	i := p.VariantIndex(params.Variant)
	if i < 0 || p.Variants[i].CurrentStock != params.PreviousStock {
		return apperr.TransactionConflictErr
	}
	if params.NewStock < 0 {
		return apperr.InsufficientStockErr
	}
	p.Variants[i].CurrentStock = params.NewStock
	return nil
}

func (r *fakeProductRepo) SaveVariants(_ context.Context, productID uuid.UUID, variants []model.Variant, _ time.Time) error {
	p := r.store.products[productID]
	for _, v := range variants {
		if i := p.VariantIndex(v.Name); i >= 0 {
			p.Variants[i] = v
		}
	}
	return nil
}

func (r *fakeProductRepo) FindExistingSKUs(_ context.Context, skus []string, exclude *uuid.UUID) ([]string, error) {
	var existing []string
	for id, p := range r.store.products {
		if exclude != nil && id == *exclude {
			continue
		}
		for _, v := range p.Variants {
			if slices.Contains(skus, v.SKU) {
				existing = append(existing, v.SKU)
			}
		}
	}
	sort.Strings(existing)
	return existing, nil
}

func (r *fakeProductRepo) ListLowStock(_ context.Context) ([]model.LowStockProduct, error) {
	var products []model.LowStockProduct
	for _, p := range r.store.products {
		lp := model.LowStockProduct{ID: p.ID, Name: p.Name, Brand: p.Brand, Category: p.Category}
		for _, v := range p.Variants {
			if v.IsLowStock() {
				lp.LowStockVariants = append(lp.LowStockVariants, model.LowStockVariant{
					Name:              v.Name,
					SKU:               v.SKU,
					CurrentStock:      v.CurrentStock,
					LowStockThreshold: v.LowStockThreshold,
				})
			}
		}
		if len(lp.LowStockVariants) > 0 {
			products = append(products, lp)
		}
	}
	return products, nil
}

func (r *fakeProductRepo) ListDistinct(_ context.Context, field repository.ProductField) ([]string, error) {
	var values []string
	for _, p := range r.store.products {
		var v string
		switch field {
		case repository.ProductFieldCategory:
			v = p.Category
		case repository.ProductFieldBrand:
			v = p.Brand
		case repository.ProductFieldSupplier:
			v = p.Supplier
		}
		if !slices.Contains(values, v) {
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values, nil
}

type fakeSaleRepo struct {
	store *fakeStore

	createErr *error
}

func newFakeSaleRepo(d *fakeDB) *fakeSaleRepo {
	var err error
	return &fakeSaleRepo{store: d.store, createErr: &err}
}

func (r *fakeSaleRepo) WithDB(d db.DB) repository.SaleRepository {
	return &fakeSaleRepo{store: storeOf(d), createErr: r.createErr}
}

func (r *fakeSaleRepo) CountSales(context.Context) (int64, error) {
	return int64(len(r.store.sales)), nil
}

func (r *fakeSaleRepo) CreateSale(_ context.Context, sale model.Sale) error {
	if *r.createErr != nil {
		return *r.createErr
	}
	for _, s := range r.store.sales {
		if s.InvoiceNumber == sale.InvoiceNumber {
			return apperr.DuplicateInvoiceErr
		}
	}
	sale.Items = slices.Clone(sale.Items)
	r.store.sales = append(r.store.sales, sale)
	return nil
}

func (r *fakeSaleRepo) GetSale(_ context.Context, id uuid.UUID) (model.Sale, error) {
	for _, s := range r.store.sales {
		if s.ID == id {
			s.Items = slices.Clone(s.Items)
			return s, nil
		}
	}
	return model.Sale{}, apperr.SaleNotFoundErr
}

func (r *fakeSaleRepo) ListSales(_ context.Context, params repository.ListSalesParams) ([]model.Sale, int64, error) {
	var sales []model.Sale
	for _, s := range r.store.sales {
		if params.PaymentStatus != "" && s.PaymentStatus != params.PaymentStatus {
			continue
		}
		sales = append(sales, s)
	}
	total := int64(len(sales))
	start := min(params.Offset, len(sales))
	end := min(start+params.Limit, len(sales))
	return sales[start:end], total, nil
}

// UpdateSaleMeta mirrors the SQL statement: items and totals are not written.
func (r *fakeSaleRepo) UpdateSaleMeta(_ context.Context, sale model.Sale) error {
	for i, s := range r.store.sales {
		if s.ID != sale.ID {
			continue
		}
		s.Customer = sale.Customer
		s.PaymentMethod = sale.PaymentMethod
		s.PaymentStatus = sale.PaymentStatus
		s.FlagStatus = sale.FlagStatus
		s.Notes = sale.Notes
		s.UpdatedAt = sale.UpdatedAt
		r.store.sales[i] = s
		return nil
	}
	return apperr.SaleNotFoundErr
}

func (r *fakeSaleRepo) DeleteSale(_ context.Context, id uuid.UUID) error {
	for i, s := range r.store.sales {
		if s.ID == id {
			r.store.sales = slices.Delete(r.store.sales, i, i+1)
			return nil
		}
	}
	return apperr.SaleNotFoundErr
}

type fakeOutboxRepo struct {
	store *fakeStore
}

func (r *fakeOutboxRepo) WithDB(d db.DB) repository.OutboxMsgRepository {
	return &fakeOutboxRepo{store: storeOf(d)}
}

func (r *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.store.outbox = append(r.store.outbox, params)
	return nil
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, int32) ([]repository.OutboxMsg, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkOutboxMsgsProcessed(context.Context, []repository.OutboxMsgResult) error {
	return nil
}

type fakeSettingsRepo struct {
	store *fakeStore
}

func (r *fakeSettingsRepo) WithDB(d db.DB) repository.SettingsRepository {
	return &fakeSettingsRepo{store: storeOf(d)}
}

func (r *fakeSettingsRepo) GetSettings(context.Context) (model.Settings, bool, error) {
	if r.store.settings == nil {
		return model.Settings{}, false, nil
	}
	return *r.store.settings, true, nil
}

func (r *fakeSettingsRepo) UpsertSettings(_ context.Context, settings model.Settings) error {
	r.store.settings = &settings
	return nil
}

type fakeNotificationRepo struct {
	store *fakeStore
}

func (r *fakeNotificationRepo) WithDB(d db.DB) repository.NotificationRepository {
	return &fakeNotificationRepo{store: storeOf(d)}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n model.Notification) error {
	r.store.notifications = append(r.store.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) ListNotifications(_ context.Context, params repository.ListNotificationsParams) ([]model.Notification, int64, error) {
	var out []model.Notification
	for _, n := range r.store.notifications {
		if params.Type != "" && n.Type != params.Type {
			continue
		}
		if params.IsRead != nil && n.IsRead != *params.IsRead {
			continue
		}
		out = append(out, n)
	}
	total := int64(len(out))
	start := min(params.Offset, len(out))
	end := min(start+params.Limit, len(out))
	return out[start:end], total, nil
}

func (r *fakeNotificationRepo) CountUnread(context.Context) (int64, error) {
	var n int64
	for _, notif := range r.store.notifications {
		if !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkNotifications(_ context.Context, ids []uuid.UUID, isRead bool) (int64, error) {
	var n int64
	for i := range r.store.notifications {
		if ids == nil || slices.Contains(ids, r.store.notifications[i].ID) {
			r.store.notifications[i].IsRead = isRead
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkNotification(_ context.Context, id uuid.UUID, isRead bool) (model.Notification, error) {
	for i := range r.store.notifications {
		if r.store.notifications[i].ID == id {
			r.store.notifications[i].IsRead = isRead
			return r.store.notifications[i], nil
		}
	}
	return model.Notification{}, apperr.NotificationNotFoundErr
}

func (r *fakeNotificationRepo) DeleteNotification(_ context.Context, id uuid.UUID) error {
	for i, n := range r.store.notifications {
		if n.ID == id {
			r.store.notifications = slices.Delete(r.store.notifications, i, i+1)
			return nil
		}
	}
	return apperr.NotificationNotFoundErr
}

type fakeSink struct {
	mu     sync.Mutex
	events []notification.Event
	err    error
}

func (s *fakeSink) Publish(_ context.Context, ev notification.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *fakeSink) types() []model.NotificationType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]model.NotificationType, 0, len(s.events))
	for _, ev := range s.events {
		types = append(types, ev.Type)
	}
	return types
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}
