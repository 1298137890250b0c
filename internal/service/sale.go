package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/event"
	"github.com/tuanvumaihuynh/stockroom/internal/inventory"
	"github.com/tuanvumaihuynh/stockroom/internal/invoice"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/notification"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
	"github.com/tuanvumaihuynh/stockroom/pkg/outbox"
	"github.com/tuanvumaihuynh/stockroom/pkg/ptr"
)

type PostSaleItemParams struct {
	ProductID uuid.UUID
	Variant   string
	Quantity  int
	// ActualSellingPrice overrides the variant's selling price when set.
	ActualSellingPrice *decimal.Decimal
}

type PostSaleParams struct {
	// InvoiceNumber is generated when empty.
	InvoiceNumber string
	Customer      string
	Items         []PostSaleItemParams
	PaymentMethod string
	PaymentStatus model.PaymentStatus
	FlagStatus    model.FlagStatus
	Notes         string
}

type ListSalesParams struct {
	Page          int
	Limit         int
	Search        string
	StartDate     *time.Time
	EndDate       *time.Time
	PaymentStatus model.PaymentStatus
}

type ListSalesResult struct {
	Sales      []model.Sale
	Pagination model.Pagination
}

// UpdateSaleParams holds the descriptive fields of a sale. Nil fields are left unchanged.
type UpdateSaleParams struct {
	Customer      *string
	PaymentMethod *string
	PaymentStatus *model.PaymentStatus
	FlagStatus    *model.FlagStatus
	Notes         *string
}

type SaleService interface {
	// PostSale reserves stock for every item and records the sale in one transaction.
	// Either all stock decrements and the sale are committed, or nothing is.
	PostSale(ctx context.Context, params PostSaleParams) (model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	ListSales(ctx context.Context, params ListSalesParams) (ListSalesResult, error)
	UpdateSale(ctx context.Context, id uuid.UUID, params UpdateSaleParams) (model.Sale, error)
	// DeleteSale removes the record only; sold stock is not restored.
	DeleteSale(ctx context.Context, id uuid.UUID) error
}

type saleService struct {
	db            db.DB
	logger        *slog.Logger
	productRepo   repository.ProductRepository
	saleRepo      repository.SaleRepository
	outboxMsgRepo repository.OutboxMsgRepository
	sink          NotificationSink
}

func NewSaleService(
	db db.DB,
	logger *slog.Logger,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	sink NotificationSink,
) SaleService {
	return &saleService{
		db:            db,
		logger:        logger.With(slog.String("service", "sale")),
		productRepo:   productRepo,
		saleRepo:      saleRepo,
		outboxMsgRepo: outboxMsgRepo,
		sink:          sink,
	}
}

func (s *saleService) PostSale(ctx context.Context, params PostSaleParams) (model.Sale, error) {
	if len(params.Items) == 0 {
		return model.Sale{}, apperr.ValidationErr.WithMsg("a sale must contain at least one item")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Sale{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	var (
		sale    model.Sale
		pending []notification.Event
	)

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)
		saleRepo := s.saleRepo.WithDB(tx)

		sale = model.Sale{
			ID:            id,
			InvoiceNumber: params.InvoiceNumber,
			Customer:      params.Customer,
			Items:         make([]model.SaleItem, 0, len(params.Items)),
			TotalAmount:   decimal.Zero,
			TotalProfit:   decimal.Zero,
			PaymentMethod: defaultPaymentMethod(params.PaymentMethod),
			PaymentStatus: defaultPaymentStatus(params.PaymentStatus),
			FlagStatus:    defaultFlagStatus(params.FlagStatus),
			Notes:         params.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		pending = nil

		ev := event.SalePostedEvent{
			SaleID:        id.String(),
			PaymentStatus: string(sale.PaymentStatus),
			PostedAt:      now,
		}

		// a product listed on several lines is locked once and reserved against its running stock
		products := make(map[uuid.UUID]*model.Product, len(params.Items))
		for _, item := range params.Items {
			product, ok := products[item.ProductID]
			if !ok {
				p, err := productRepo.GetProductForUpdate(ctx, item.ProductID)
				if err != nil {
					if errors.Is(err, apperr.ProductNotFoundErr) {
						return apperr.SaleProductNotFoundErr.WithMsgf("product %s not found", item.ProductID)
					}
					return fmt.Errorf("product repository get product for update: %w", err)
				}
				product = &p
				products[item.ProductID] = product
			}

			res, err := inventory.Reserve(product, item.Variant, item.Quantity, item.ActualSellingPrice)
			if err != nil {
				return err
			}

			if err := productRepo.UpdateVariantStock(ctx, repository.UpdateVariantStockParams{
				ProductID:     product.ID,
				Variant:       res.Variant.Name,
				PreviousStock: res.PreviousStock,
				NewStock:      res.Variant.CurrentStock,
			}); err != nil {
				return fmt.Errorf("product repository update variant stock: %w", err)
			}

			sale.Items = append(sale.Items, res.Item)
			sale.TotalAmount = sale.TotalAmount.Add(res.LineTotal())
			sale.TotalProfit = sale.TotalProfit.Add(res.Item.Profit)

			ev.Items = append(ev.Items, event.SalePostedItem{
				ProductID:      product.ID.String(),
				Variant:        res.Variant.Name,
				Quantity:       res.Item.Quantity,
				RemainingStock: res.Variant.CurrentStock,
				LowStock:       res.LowStock,
			})

			if res.LowStock {
				pending = append(pending, notification.Event{
					Type: model.NotificationTypeLowStock,
					Message: fmt.Sprintf("Low stock alert: %s - %s (%d remaining)",
						product.Name, res.Variant.Name, res.Variant.CurrentStock),
					RelatedTo:    ptr.New(product.ID),
					RelatedModel: model.RelatedModelProduct,
				})
			}
		}

		if sale.InvoiceNumber == "" {
			count, err := saleRepo.CountSales(ctx)
			if err != nil {
				return fmt.Errorf("sale repository count sales: %w", err)
			}
			sale.InvoiceNumber = invoice.Generate(now, count)
		}

		if err := saleRepo.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("sale repository create sale: %w", err)
		}

		ev.InvoiceNumber = sale.InvoiceNumber
		ev.TotalAmount = sale.TotalAmount
		ev.TotalProfit = sale.TotalProfit
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(tx).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicSalePosted,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      payload,
				PartitionKey: ptr.New(sale.ID.String()),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Sale{}, conflictOr(fmt.Errorf("db with tx: %w", err))
	}

	events := make([]notification.Event, 0, len(pending)+1)
	events = append(events, notification.Event{
		Type:         model.NotificationTypeNewSale,
		Message:      fmt.Sprintf("New sale recorded: %s for $%s", sale.InvoiceNumber, sale.TotalAmount.StringFixed(2)),
		RelatedTo:    ptr.New(sale.ID),
		RelatedModel: model.RelatedModelSale,
	})
	events = append(events, pending...)
	publishAll(ctx, s.logger, s.sink, events)

	s.logger.InfoContext(ctx, "sale posted",
		slog.String("sale_id", sale.ID.String()),
		slog.String("invoice_number", sale.InvoiceNumber),
		slog.Int("items", len(sale.Items)),
		slog.Int("low_stock_alerts", len(pending)),
	)

	return sale, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sale, err := s.saleRepo.GetSale(ctx, id)
	if err != nil {
		return model.Sale{}, fmt.Errorf("sale repository get sale: %w", err)
	}
	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, params ListSalesParams) (ListSalesResult, error) {
	page, limit, offset := pageBounds(params.Page, params.Limit, 10)

	sales, total, err := s.saleRepo.ListSales(ctx, repository.ListSalesParams{
		Search:        params.Search,
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		PaymentStatus: params.PaymentStatus,
		Offset:        offset,
		Limit:         limit,
	})
	if err != nil {
		return ListSalesResult{}, fmt.Errorf("sale repository list sales: %w", err)
	}

	return ListSalesResult{
		Sales:      sales,
		Pagination: model.NewPagination(total, page, limit),
	}, nil
}

func (s *saleService) UpdateSale(ctx context.Context, id uuid.UUID, params UpdateSaleParams) (model.Sale, error) {
	var sale model.Sale
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		saleRepo := s.saleRepo.WithDB(tx)

		var err error
		sale, err = saleRepo.GetSale(ctx, id)
		if err != nil {
			return fmt.Errorf("sale repository get sale: %w", err)
		}

		if params.Customer != nil {
			sale.Customer = *params.Customer
		}
		if params.PaymentMethod != nil && *params.PaymentMethod != "" {
			sale.PaymentMethod = *params.PaymentMethod
		}
		if params.PaymentStatus != nil && *params.PaymentStatus != "" {
			sale.PaymentStatus = *params.PaymentStatus
		}
		if params.FlagStatus != nil && *params.FlagStatus != "" {
			sale.FlagStatus = *params.FlagStatus
		}
		if params.Notes != nil {
			sale.Notes = *params.Notes
		}
		sale.UpdatedAt = time.Now()

		if err := saleRepo.UpdateSaleMeta(ctx, sale); err != nil {
			return fmt.Errorf("sale repository update sale meta: %w", err)
		}

		return nil
	}); err != nil {
		return model.Sale{}, conflictOr(fmt.Errorf("db with tx: %w", err))
	}

	publishAll(ctx, s.logger, s.sink, []notification.Event{{
		Type:         model.NotificationTypeSaleUpdated,
		Message:      "Sale updated: " + sale.InvoiceNumber,
		RelatedTo:    ptr.New(sale.ID),
		RelatedModel: model.RelatedModelSale,
	}})

	return sale, nil
}

func (s *saleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	if err := s.saleRepo.DeleteSale(ctx, id); err != nil {
		return fmt.Errorf("sale repository delete sale: %w", err)
	}
	return nil
}

// defaultPaymentStatus keeps Completed and Pending; anything else, Cancelled included, posts as Completed.
func defaultPaymentStatus(status model.PaymentStatus) model.PaymentStatus {
	if status == model.PaymentStatusPending {
		return model.PaymentStatusPending
	}
	return model.PaymentStatusCompleted
}

func defaultPaymentMethod(method string) string {
	if method == "" {
		return model.DefaultPaymentMethod
	}
	return method
}

func defaultFlagStatus(status model.FlagStatus) model.FlagStatus {
	if status == model.FlagStatusRed {
		return model.FlagStatusRed
	}
	return model.FlagStatusGreen
}

// conflictOr turns serialization failures and deadlocks into a retryable conflict.
func conflictOr(err error) error {
	if db.IsConflict(err) {
		return apperr.TransactionConflictErr.WrapParent(err)
	}
	return err
}
