package apperr

import "github.com/tuanvumaihuynh/stockroom/pkg/zerror"

const (
	ValidationErrorCode       = "VALIDATION_FAILED"
	UnauthorizedCode          = "UNAUTHORIZED"
	ForbiddenCode             = "FORBIDDEN"
	ProductNotFoundCode       = "PRODUCT_NOT_FOUND"
	VariantNotFoundCode       = "VARIANT_NOT_FOUND"
	InsufficientStockCode     = "INSUFFICIENT_STOCK"
	TransactionConflictCode   = "TRANSACTION_CONFLICT"
	DuplicateInvoiceCode      = "DUPLICATE_INVOICE_NUMBER"
	DuplicateSKUCode          = "DUPLICATE_SKU"
	DuplicateVariantNameCode  = "DUPLICATE_VARIANT_NAME"
	SaleNotFoundCode          = "SALE_NOT_FOUND"
	NotificationNotFoundCode  = "NOTIFICATION_NOT_FOUND"
	InvalidNotificationUpdate = "INVALID_NOTIFICATION_UPDATE"
)

var (
	ValidationErr   = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	UnauthorizedErr = zerror.NewUnauthorized(UnauthorizedCode, "missing or invalid credentials")
	ForbiddenErr    = zerror.NewForbidden(ForbiddenCode, "not allowed to perform this action")

	// ProductNotFoundErr is used by routes addressing a product by id.
	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	// SaleProductNotFoundErr is a bad request: the sale references a product that does not exist.
	SaleProductNotFoundErr = zerror.NewBadRequest(ProductNotFoundCode, "product not found")
	VariantNotFoundErr     = zerror.NewBadRequest(VariantNotFoundCode, "variant not found")
	InsufficientStockErr   = zerror.NewBadRequest(InsufficientStockCode, "insufficient stock")

	TransactionConflictErr = zerror.NewConflict(TransactionConflictCode, "the request conflicted with a concurrent update, please retry")
	DuplicateInvoiceErr    = zerror.NewConflict(DuplicateInvoiceCode, "invoice number already exists")

	DuplicateSKUErr         = zerror.NewBadRequest(DuplicateSKUCode, "one or more SKUs already exist")
	DuplicateVariantNameErr = zerror.NewBadRequest(DuplicateVariantNameCode, "variant names must be unique within a product")

	SaleNotFoundErr         = zerror.NewNotFound(SaleNotFoundCode, "sale not found")
	NotificationNotFoundErr = zerror.NewNotFound(NotificationNotFoundCode, "notification not found")
	InvalidNotificationErr  = zerror.NewBadRequest(InvalidNotificationUpdate, "invalid request body")
)
