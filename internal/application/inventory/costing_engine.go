// Package inventory orquesta el kardex: registra movimientos con costo promedio
// ponderado, consulta y repara la valorización de cada producto.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/money"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MovementInput entrada para registrar un movimiento de inventario.
// Direction solo aplica a AJUSTE; para los demás tipos se deriva.
type MovementInput struct {
	ProductID string
	Kind      entity.MovementKind
	Direction entity.Direction
	Quantity  int64
	UnitPrice decimal.Decimal
	Reference string
	EntryID   string // asiento del documento; vacío en movimientos manuales
	Actor     string
}

// RecalculationResult resumen de una reparación del kardex.
type RecalculationResult struct {
	ProductID     string          `json:"product_id"`
	Movements     int             `json:"movements"`
	RowsChanged   int             `json:"rows_changed"`
	PreviousStock int64           `json:"previous_stock"`
	PreviousCost  decimal.Decimal `json:"previous_cost"`
	Stock         int64           `json:"stock"`
	Cost          decimal.Decimal `json:"cost"`
}

// CostingEngine motor de costeo. Toda escritura pasa por la unidad de trabajo con
// el producto bloqueado; las lecturas van directo a los repositorios.
type CostingEngine struct {
	uow   repository.UnitOfWork
	reads repository.Repos
	log   zerolog.Logger
	now   func() time.Time
}

// NewCostingEngine construye el motor.
func NewCostingEngine(uow repository.UnitOfWork, reads repository.Repos, log zerolog.Logger) *CostingEngine {
	return &CostingEngine{
		uow:   uow,
		reads: reads,
		log:   log.With().Str("component", "costing_engine").Logger(),
		now:   time.Now,
	}
}

func validateInput(in MovementInput) (entity.Direction, error) {
	if in.ProductID == "" {
		return "", domain.ErrProductNotFound
	}
	if !in.Kind.Valid() {
		return "", domain.ErrInvalidMovementKind
	}
	if in.Quantity <= 0 {
		return "", domain.ErrInvalidQuantity
	}
	if !in.UnitPrice.IsPositive() {
		return "", domain.ErrInvalidUnitPrice
	}
	if !money.FitsScale(in.UnitPrice) {
		return "", domain.ErrInvalidPriceScale
	}
	return entity.ResolveDirection(in.Kind, in.Direction)
}

// RecordMovement valida, bloquea el producto y registra el movimiento junto con la
// actualización de stock y costo en una sola transacción. Es la vía de los
// movimientos manuales: su referencia no puede ser el comprobante de un asiento.
func (e *CostingEngine) RecordMovement(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	var mov *entity.InventoryMovement
	err := e.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		if err := checkReference(ctx, repos.Journal, in.Reference); err != nil {
			return err
		}
		var err error
		mov, err = e.RecordMovementInTx(ctx, repos, in, e.now())
		return err
	})
	if err != nil {
		e.logRejected(in, err)
		return nil, err
	}
	e.log.Info().
		Str("product_id", mov.ProductID).
		Str("kind", string(mov.Kind)).
		Int64("quantity", mov.Quantity).
		Int64("stock_after", mov.StockAfter).
		Str("unit_cost", mov.UnitCost.StringFixed(2)).
		Msg("movimiento registrado")
	return mov, nil
}

func checkReference(ctx context.Context, journal repository.JournalRepository, reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil
	}
	entry, err := journal.GetByVoucher(ctx, reference)
	if err != nil {
		return fmt.Errorf("get entry voucher=%s: %w", reference, err)
	}
	if entry != nil {
		return fmt.Errorf("%w: %s", domain.ErrReservedReference, reference)
	}
	return nil
}

// RecordMovementInTx ejecuta el movimiento con los repositorios de una transacción
// abierta por el llamador. Sirve para componer movimientos y asientos en un solo commit.
func (e *CostingEngine) RecordMovementInTx(ctx context.Context, repos repository.Repos, in MovementInput, now time.Time) (*entity.InventoryMovement, error) {
	dir, err := validateInput(in)
	if err != nil {
		return nil, err
	}
	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("lock product id=%s: %w", in.ProductID, err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if !product.IsActive() {
		return nil, domain.ErrInactiveProduct
	}

	step, err := inventory.Apply(product.ID, inventory.State{Stock: product.Stock, Cost: product.Cost}, dir, in.Quantity, in.UnitPrice)
	if err != nil {
		return nil, err
	}

	unitCost := step.CostAfter
	mov := &entity.InventoryMovement{
		ProductID:   product.ID,
		Kind:        in.Kind,
		Direction:   dir,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		UnitCost:    &unitCost,
		StockBefore: step.StockBefore,
		StockAfter:  step.StockAfter,
		Reference:   in.Reference,
		CreatedAt:   now,
		CreatedBy:   in.Actor,
	}
	if in.EntryID != "" {
		entryID := in.EntryID
		mov.EntryID = &entryID
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, fmt.Errorf("create movement product=%s: %w", product.ID, err)
	}
	if err := repos.Products.UpdateValuation(ctx, product.ID, step.StockAfter, step.CostAfter); err != nil {
		return nil, fmt.Errorf("update valuation product=%s: %w", product.ID, err)
	}
	return mov, nil
}

func (e *CostingEngine) logRejected(in MovementInput, err error) {
	ev := e.log.Error()
	if errors.Is(err, domain.ErrBusinessRule) || errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		ev = e.log.Warn()
	}
	ev.Err(err).
		Str("product_id", in.ProductID).
		Str("kind", string(in.Kind)).
		Int64("quantity", in.Quantity).
		Msg("movimiento rechazado")
}

func (e *CostingEngine) product(ctx context.Context, id string) (*entity.Product, error) {
	p, err := e.reads.Products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product id=%s: %w", id, err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// GetKardex devuelve el historial filtrado del producto, más reciente primero.
func (e *CostingEngine) GetKardex(ctx context.Context, productID string, filter repository.KardexFilter) ([]*entity.InventoryMovement, error) {
	if _, err := e.product(ctx, productID); err != nil {
		return nil, err
	}
	for _, k := range filter.Kinds {
		if !k.Valid() {
			return nil, domain.ErrInvalidMovementKind
		}
	}
	list, err := e.reads.Movements.ListByProduct(ctx, productID, filter)
	if err != nil {
		return nil, fmt.Errorf("kardex product=%s: %w", productID, err)
	}
	return list, nil
}

// RecalculateCosts reaplica todo el kardex del producto en orden de Seq, reescribe los
// campos derivados de cada fila y la caché del producto. Es idempotente; si el replay
// deja stock negativo en algún punto no se persiste nada.
func (e *CostingEngine) RecalculateCosts(ctx context.Context, productID string) (*RecalculationResult, error) {
	var res *RecalculationResult
	err := e.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		product, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return fmt.Errorf("lock product id=%s: %w", productID, err)
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		movements, err := repos.Movements.ListForReplay(ctx, productID)
		if err != nil {
			return fmt.Errorf("replay product=%s: %w", productID, err)
		}
		final, revals, err := inventory.Replay(productID, movements)
		if err != nil {
			return err
		}

		changed := 0
		for i, rv := range revals {
			m := movements[i]
			if m.StockBefore == rv.StockBefore && m.StockAfter == rv.StockAfter &&
				m.UnitCost != nil && m.UnitCost.Equal(rv.UnitCost) {
				continue
			}
			if err := repos.Movements.UpdateDerived(ctx, rv.MovementID, rv.StockBefore, rv.StockAfter, rv.UnitCost); err != nil {
				return fmt.Errorf("rewrite movement=%s: %w", rv.MovementID, err)
			}
			changed++
		}
		if err := repos.Products.UpdateValuation(ctx, productID, final.Stock, final.Cost); err != nil {
			return fmt.Errorf("update valuation product=%s: %w", productID, err)
		}
		res = &RecalculationResult{
			ProductID:     productID,
			Movements:     len(movements),
			RowsChanged:   changed,
			PreviousStock: product.Stock,
			PreviousCost:  product.Cost,
			Stock:         final.Stock,
			Cost:          final.Cost,
		}
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Str("product_id", productID).Msg("recálculo abortado")
		return nil, err
	}
	e.log.Info().
		Str("product_id", productID).
		Int("rows_changed", res.RowsChanged).
		Int64("stock", res.Stock).
		Str("cost", res.Cost.StringFixed(2)).
		Msg("kardex recalculado")
	return res, nil
}

// GetCurrentStock devuelve el stock vigente del producto.
func (e *CostingEngine) GetCurrentStock(ctx context.Context, productID string) (int64, error) {
	p, err := e.product(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// GetCurrentCost devuelve el costo promedio vigente del producto.
func (e *CostingEngine) GetCurrentCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, err := e.product(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Cost, nil
}

// ValidateSufficientStock indica si hay stock para una salida de quantity. No muta nada;
// el resultado puede cambiar antes de que el llamador registre la salida.
func (e *CostingEngine) ValidateSufficientStock(ctx context.Context, productID string, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, domain.ErrInvalidQuantity
	}
	p, err := e.product(ctx, productID)
	if err != nil {
		return false, err
	}
	return p.Stock >= quantity, nil
}
