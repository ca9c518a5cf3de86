package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	v *view
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.skus[product.SKU]; ok {
			return domain.ErrDuplicateSKU
		}
		st.products[product.ID] = copyProduct(product)
		st.skus[product.SKU] = product.ID
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
	})
	return out, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var id string
	r.v.read(func(st *state) { id = st.skus[sku] })
	if id == "" {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// GetForUpdate no necesita bloqueo propio: la unidad de trabajo ya tiene exclusión total.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) UpdateValuation(_ context.Context, id string, stock int64, cost decimal.Decimal) error {
	return r.v.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("update valuation product=%s: %w", id, domain.ErrProductNotFound)
		}
		if stock < 0 {
			return fmt.Errorf("update valuation product=%s: stock negativo %d", id, stock)
		}
		p.Stock = stock
		p.Cost = cost
		p.UpdatedAt = time.Now()
		return nil
	})
}

func (r *ProductRepo) UpdateStatus(_ context.Context, product *entity.Product) error {
	return r.v.write(func(st *state) error {
		p, ok := st.products[product.ID]
		if !ok {
			return fmt.Errorf("update status product=%s: %w", product.ID, domain.ErrProductNotFound)
		}
		p.Status = product.Status
		p.UpdatedAt = product.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	r.v.read(func(st *state) {
		for _, p := range st.products {
			list = append(list, copyProduct(p))
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].SKU < list[j].SKU
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return page(list, limit, offset), nil
}
