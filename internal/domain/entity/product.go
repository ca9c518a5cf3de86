package entity

import (
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario.
// Stock y Cost son una caché del kardex: solo el motor de costeo los escribe,
// siempre en la misma transacción que el movimiento que los produce.
type Product struct {
	ID        string
	SKU       string // inmutable tras la creación
	Name      string
	Stock     int64
	Cost      decimal.Decimal // costo promedio ponderado
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si el producto admite movimientos.
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

// Deactivate pasa el producto a DEACTIVATED. El kardex se conserva.
func (p *Product) Deactivate(now time.Time) error {
	if p.Status != StatusActive {
		return domain.ErrInvalidTransition
	}
	p.Status = StatusDeactivated
	p.UpdatedAt = now
	return nil
}

// Activate reactiva un producto desactivado.
func (p *Product) Activate(now time.Time) error {
	if p.Status != StatusDeactivated {
		return domain.ErrInvalidTransition
	}
	p.Status = StatusActive
	p.UpdatedAt = now
	return nil
}
