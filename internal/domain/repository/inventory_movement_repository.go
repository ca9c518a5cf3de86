package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// KardexFilter filtros de consulta del kardex.
type KardexFilter struct {
	From   *time.Time
	To     *time.Time
	Kinds  []entity.MovementKind
	Limit  int
	Offset int
}

// InventoryMovementRepository define el puerto de persistencia del kardex (solo inserción).
type InventoryMovementRepository interface {
	// Create inserta el movimiento y asigna Seq.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// ListByProduct devuelve el kardex filtrado, más reciente primero.
	ListByProduct(ctx context.Context, productID string, filter KardexFilter) ([]*entity.InventoryMovement, error)
	// ListForReplay devuelve todos los movimientos del producto en orden de aplicación.
	ListForReplay(ctx context.Context, productID string) ([]*entity.InventoryMovement, error)
	// ListByEntry devuelve los movimientos que generó el asiento de un documento, en orden de Seq.
	ListByEntry(ctx context.Context, entryID string) ([]*entity.InventoryMovement, error)
	// UpdateDerived reescribe solo los campos derivados de una fila (reparación).
	UpdateDerived(ctx context.Context, id string, stockBefore, stockAfter int64, unitCost decimal.Decimal) error
}
