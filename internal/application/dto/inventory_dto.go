package dto

import (
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// direction solo aplica a AJUSTE.
type RegisterMovementRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Type      string          `json:"type" validate:"required,oneof=ENTRADA SALIDA MERMA AJUSTE"`
	Direction string          `json:"direction,omitempty" validate:"omitempty,oneof=INCREASE DECREASE"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reference string          `json:"reference,omitempty" validate:"max=100"`
}

// KardexRequest filtros del kardex en query string. from/to en RFC3339.
type KardexRequest struct {
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `query:"offset" validate:"min=0"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Types  string `query:"types"` // separados por coma
}

// MovementResponse fila del kardex.
type MovementResponse struct {
	ID          string           `json:"id"`
	Seq         int64            `json:"seq"`
	ProductID   string           `json:"product_id"`
	Type        string           `json:"type"`
	Direction   string           `json:"direction"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	StockBefore int64            `json:"stock_before"`
	StockAfter  int64            `json:"stock_after"`
	Reference   string           `json:"reference,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	CreatedBy   string           `json:"created_by"`
}

// StockResponse valorización vigente de un producto.
type StockResponse struct {
	ProductID string          `json:"product_id"`
	Stock     int64           `json:"stock"`
	Cost      decimal.Decimal `json:"cost"`
}

// StockCheckResponse respuesta de la validación de disponibilidad.
type StockCheckResponse struct {
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
	Sufficient bool   `json:"sufficient"`
}

// NewMovementResponse mapea un movimiento.
func NewMovementResponse(m *entity.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Seq:         m.Seq,
		ProductID:   m.ProductID,
		Type:        string(m.Kind),
		Direction:   string(m.Direction),
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost().Round(2),
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reference:   m.Reference,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

// NewMovementList mapea una lista de movimientos.
func NewMovementList(list []*entity.InventoryMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, NewMovementResponse(m))
	}
	return out
}
