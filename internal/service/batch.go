package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/notification"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
	"github.com/tuanvumaihuynh/stockroom/pkg/ptr"
)

type BatchResult struct {
	Affected int
	Message  string
}

// BatchService applies one change to every variant of the selected products.
// Ids that match no product are skipped.
type BatchService interface {
	AddStock(ctx context.Context, productIDs []uuid.UUID, quantity int) (BatchResult, error)
	MarkOutOfStock(ctx context.Context, productIDs []uuid.UUID) (BatchResult, error)
	// DecreasePrice lowers selling prices by percentage (0 < percentage <= 100), rounded to cents.
	DecreasePrice(ctx context.Context, productIDs []uuid.UUID, percentage decimal.Decimal) (BatchResult, error)
}

type batchService struct {
	db          db.DB
	logger      *slog.Logger
	productRepo repository.ProductRepository
	sink        NotificationSink
}

func NewBatchService(
	db db.DB,
	logger *slog.Logger,
	productRepo repository.ProductRepository,
	sink NotificationSink,
) BatchService {
	return &batchService{
		db:          db,
		logger:      logger.With(slog.String("service", "batch")),
		productRepo: productRepo,
		sink:        sink,
	}
}

var hundred = decimal.NewFromInt(100)

// MaxStock is the largest stock level a variant column can hold.
const MaxStock = math.MaxInt32

func (s *batchService) AddStock(ctx context.Context, productIDs []uuid.UUID, quantity int) (BatchResult, error) {
	if quantity <= 0 || quantity > MaxStock {
		return BatchResult{}, apperr.ValidationErr.WithMsg("invalid quantity")
	}

	n, err := s.apply(ctx, productIDs,
		func(v *model.Variant) error {
			if v.CurrentStock > MaxStock-quantity {
				return apperr.ValidationErr.WithMsgf("stock of variant %s would exceed %d", v.Name, MaxStock)
			}
			v.CurrentStock += quantity
			return nil
		},
		func(p model.Product) notification.Event {
			return productEvent(model.NotificationTypeStockUpdate, p,
				fmt.Sprintf("Added %d units to all variants of %s", quantity, p.Name))
		},
	)
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{Affected: n, Message: fmt.Sprintf("Added %d units to %d products", quantity, n)}, nil
}

func (s *batchService) MarkOutOfStock(ctx context.Context, productIDs []uuid.UUID) (BatchResult, error) {
	n, err := s.apply(ctx, productIDs,
		func(v *model.Variant) error {
			v.CurrentStock = 0
			return nil
		},
		func(p model.Product) notification.Event {
			return productEvent(model.NotificationTypeStockUpdate, p,
				fmt.Sprintf("Marked all variants of %s as out of stock", p.Name))
		},
	)
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{Affected: n, Message: fmt.Sprintf("Marked %d products as out of stock", n)}, nil
}

func (s *batchService) DecreasePrice(ctx context.Context, productIDs []uuid.UUID, percentage decimal.Decimal) (BatchResult, error) {
	if !percentage.IsPositive() || percentage.GreaterThan(hundred) {
		return BatchResult{}, apperr.ValidationErr.WithMsg("invalid percentage")
	}

	factor := decimal.NewFromInt(1).Sub(percentage.Div(hundred))
	n, err := s.apply(ctx, productIDs,
		func(v *model.Variant) error {
			v.SellingPrice = v.SellingPrice.Mul(factor).Round(2)
			return nil
		},
		func(p model.Product) notification.Event {
			return productEvent(model.NotificationTypePriceChange, p,
				fmt.Sprintf("Price decreased by %s%% for %s", percentage, p.Name))
		},
	)
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{
		Affected: n,
		Message:  fmt.Sprintf("Decreased prices for %d products by %s%%", n, percentage),
	}, nil
}

func (s *batchService) apply(
	ctx context.Context,
	productIDs []uuid.UUID,
	mutate func(*model.Variant) error,
	notify func(model.Product) notification.Event,
) (int, error) {
	if len(productIDs) == 0 {
		return 0, apperr.ValidationErr.WithMsg("no products selected")
	}

	var events []notification.Event
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)
		events = nil

		products, err := productRepo.ListProductsForUpdate(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("product repository list products for update: %w", err)
		}

		now := time.Now()
		for _, p := range products {
			for i := range p.Variants {
				if err := mutate(&p.Variants[i]); err != nil {
					return err
				}
			}
			if err := productRepo.SaveVariants(ctx, p.ID, p.Variants, now); err != nil {
				return fmt.Errorf("product repository save variants: %w", err)
			}
			events = append(events, notify(p))
		}

		return nil
	}); err != nil {
		return 0, conflictOr(fmt.Errorf("db with tx: %w", err))
	}

	publishAll(ctx, s.logger, s.sink, events)

	return len(events), nil
}

func productEvent(t model.NotificationType, p model.Product, msg string) notification.Event {
	return notification.Event{
		Type:         t,
		Message:      msg,
		RelatedTo:    ptr.New(p.ID),
		RelatedModel: model.RelatedModelProduct,
	}
}
