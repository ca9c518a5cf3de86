package entity

import (
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de inventario.
type MovementKind string

const (
	MovementEntrada MovementKind = "ENTRADA" // compra o ingreso
	MovementSalida  MovementKind = "SALIDA"  // venta o despacho
	MovementMerma   MovementKind = "MERMA"   // pérdida, daño, vencimiento
	MovementAjuste  MovementKind = "AJUSTE"  // ajuste de conteo físico, con dirección
)

// Valid indica si el tipo es conocido.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntrada, MovementSalida, MovementMerma, MovementAjuste:
		return true
	}
	return false
}

// Direction sentido del movimiento sobre el stock.
type Direction string

const (
	DirectionIncrease Direction = "INCREASE"
	DirectionDecrease Direction = "DECREASE"
)

// ResolveDirection deriva la dirección del tipo. Solo AJUSTE la toma del llamador.
func ResolveDirection(kind MovementKind, requested Direction) (Direction, error) {
	switch kind {
	case MovementEntrada:
		return DirectionIncrease, nil
	case MovementSalida, MovementMerma:
		return DirectionDecrease, nil
	case MovementAjuste:
		if requested != DirectionIncrease && requested != DirectionDecrease {
			return "", domain.ErrInvalidDirection
		}
		return requested, nil
	}
	return "", domain.ErrInvalidMovementKind
}

// InventoryMovement es una fila inmutable del kardex. Las correcciones son
// movimientos nuevos; solo RecalculateCosts reescribe los campos derivados.
type InventoryMovement struct {
	ID          string
	Seq         int64 // orden total de aplicación, asignado por el almacenamiento
	ProductID   string
	Kind        MovementKind
	Direction   Direction
	Quantity    int64
	UnitPrice   decimal.Decimal  // precio de la transacción
	UnitCost    *decimal.Decimal // promedio ponderado tras el movimiento; nil en filas heredadas
	StockBefore int64
	StockAfter  int64
	Reference   string  // comprobante o nota libre
	EntryID     *string // asiento del documento que generó el movimiento; nil si es manual
	CreatedAt   time.Time
	CreatedBy   string
}

// TotalCost valoriza el movimiento al costo atribuido (cero si es una fila heredada).
func (m *InventoryMovement) TotalCost() decimal.Decimal {
	if m.UnitCost == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.Quantity).Mul(*m.UnitCost)
}
