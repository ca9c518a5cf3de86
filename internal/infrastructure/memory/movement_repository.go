package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo kardex en memoria, solo inserción.
type InventoryMovementRepo struct {
	v *view
}

func (r *InventoryMovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	return r.v.write(func(st *state) error {
		if movement.ID == "" {
			movement.ID = uuid.New().String()
		}
		st.seq++
		movement.Seq = st.seq
		st.movements = append(st.movements, copyMovement(movement))
		return nil
	})
}

func (r *InventoryMovementRepo) ListByProduct(_ context.Context, productID string, f repository.KardexFilter) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	r.v.read(func(st *state) {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.ProductID != productID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, m.Kind) {
				continue
			}
			list = append(list, copyMovement(m))
		}
	})
	return page(list, f.Limit, f.Offset), nil
}

func (r *InventoryMovementRepo) ListForReplay(_ context.Context, productID string) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.ProductID == productID {
				list = append(list, copyMovement(m))
			}
		}
	})
	return list, nil
}

func (r *InventoryMovementRepo) ListByEntry(_ context.Context, entryID string) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.EntryID != nil && *m.EntryID == entryID {
				list = append(list, copyMovement(m))
			}
		}
	})
	return list, nil
}

func (r *InventoryMovementRepo) UpdateDerived(_ context.Context, id string, stockBefore, stockAfter int64, unitCost decimal.Decimal) error {
	return r.v.write(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				m.StockBefore = stockBefore
				m.StockAfter = stockAfter
				uc := unitCost
				m.UnitCost = &uc
				return nil
			}
		}
		return fmt.Errorf("update derived movement=%s: no existe", id)
	})
}
