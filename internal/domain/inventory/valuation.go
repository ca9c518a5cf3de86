package inventory

import (
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// State valorización vigente de un producto.
type State struct {
	Stock int64
	Cost  decimal.Decimal
}

// Step resultado de aplicar un movimiento sobre un State.
type Step struct {
	StockBefore int64
	StockAfter  int64
	CostBefore  decimal.Decimal
	CostAfter   decimal.Decimal
}

// Next devuelve el State resultante.
func (s Step) Next() State {
	return State{Stock: s.StockAfter, Cost: s.CostAfter}
}

// Apply calcula el efecto de un movimiento. Los incrementos mezclan el precio en
// el promedio; los decrementos no mueven el costo y fallan si el stock quedaría negativo.
func Apply(productID string, st State, dir entity.Direction, quantity int64, unitPrice decimal.Decimal) (Step, error) {
	step := Step{StockBefore: st.Stock, CostBefore: st.Cost}
	switch dir {
	case entity.DirectionIncrease:
		step.StockAfter = st.Stock + quantity
		step.CostAfter = CostCalculator(st.Stock, st.Cost, quantity, unitPrice)
	case entity.DirectionDecrease:
		if st.Stock-quantity < 0 {
			return Step{}, &domain.InsufficientStockError{ProductID: productID, Available: st.Stock, Requested: quantity}
		}
		step.StockAfter = st.Stock - quantity
		step.CostAfter = st.Cost
	default:
		return Step{}, domain.ErrInvalidDirection
	}
	return step, nil
}

// Revaluation campos derivados recalculados para una fila del kardex.
type Revaluation struct {
	MovementID  string
	StockBefore int64
	StockAfter  int64
	UnitCost    decimal.Decimal
}

// Replay reaplica el kardex completo desde stock cero. Los movimientos deben venir
// en orden de aplicación (Seq ascendente). Es determinista: dos ejecuciones sobre
// el mismo kardex producen el mismo resultado.
func Replay(productID string, movements []*entity.InventoryMovement) (State, []Revaluation, error) {
	st := State{Stock: 0, Cost: decimal.Zero}
	out := make([]Revaluation, 0, len(movements))
	for _, m := range movements {
		step, err := Apply(productID, st, m.Direction, m.Quantity, m.UnitPrice)
		if err != nil {
			return State{}, nil, err
		}
		st = step.Next()
		out = append(out, Revaluation{
			MovementID:  m.ID,
			StockBefore: step.StockBefore,
			StockAfter:  step.StockAfter,
			UnitCost:    step.CostAfter,
		})
	}
	return st, out, nil
}
