package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLineRequest línea de compra o venta. tax_rate es fracción (0.19).
type DocumentLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// DocumentHeader cabecera común de los documentos contabilizados.
type DocumentHeader struct {
	Voucher     string     `json:"voucher" validate:"required,max=60"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description,omitempty" validate:"max=500"`
}

// PurchaseRequest body para POST /api/postings/purchases.
type PurchaseRequest struct {
	DocumentHeader
	Lines []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleRequest body para POST /api/postings/sales.
type SaleRequest struct {
	DocumentHeader
	OnCredit bool                  `json:"on_credit"`
	Lines    []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ShrinkageRequest body para POST /api/postings/shrinkages.
type ShrinkageRequest struct {
	DocumentHeader
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// AdjustmentRequest body para POST /api/postings/adjustments.
type AdjustmentRequest struct {
	DocumentHeader
	ProductID string           `json:"product_id" validate:"required"`
	Direction string           `json:"direction" validate:"required,oneof=INCREASE DECREASE"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// PostingResponse asiento y movimientos generados por un documento.
type PostingResponse struct {
	Entry     *JournalEntryResponse `json:"entry"`
	Movements []MovementResponse    `json:"movements"`
}
