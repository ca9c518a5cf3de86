package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción
	// (SELECT FOR UPDATE). Serializa los movimientos de un mismo producto.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateValuation escribe la caché de stock y costo. Solo el motor de costeo la usa.
	UpdateValuation(ctx context.Context, id string, stock int64, cost decimal.Decimal) error
	UpdateStatus(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
