package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementsTable = "inventory_movements"

var movementColumns = []string{
	"id", "seq", "product_id", "kind", "direction", "quantity", "unit_price", "unit_cost",
	"stock_before", "stock_after", "reference", "entry_id", "created_at", "created_by",
}

// movementRow fila tal como la devuelve pgxscan.
type movementRow struct {
	ID          string           `db:"id"`
	Seq         int64            `db:"seq"`
	ProductID   string           `db:"product_id"`
	Kind        string           `db:"kind"`
	Direction   string           `db:"direction"`
	Quantity    int64            `db:"quantity"`
	UnitPrice   decimal.Decimal  `db:"unit_price"`
	UnitCost    *decimal.Decimal `db:"unit_cost"`
	StockBefore int64            `db:"stock_before"`
	StockAfter  int64            `db:"stock_after"`
	Reference   *string          `db:"reference"`
	EntryID     *string          `db:"entry_id"`
	CreatedAt   time.Time        `db:"created_at"`
	CreatedBy   *string          `db:"created_by"`
}

func (r movementRow) toEntity() *entity.InventoryMovement {
	m := &entity.InventoryMovement{
		ID:          r.ID,
		Seq:         r.Seq,
		ProductID:   r.ProductID,
		Kind:        entity.MovementKind(r.Kind),
		Direction:   entity.Direction(r.Direction),
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		UnitCost:    r.UnitCost,
		StockBefore: r.StockBefore,
		StockAfter:  r.StockAfter,
		EntryID:     r.EntryID,
		CreatedAt:   r.CreatedAt,
	}
	if r.Reference != nil {
		m.Reference = *r.Reference
	}
	if r.CreatedBy != nil {
		m.CreatedBy = *r.CreatedBy
	}
	return m
}

// InventoryMovementRepo kardex sobre PostgreSQL (usable con pool o tx). Solo inserción.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create persiste un movimiento y toma el seq asignado por la secuencia.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, product_id, kind, direction, quantity, unit_price, unit_cost,
			stock_before, stock_after, reference, entry_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		movement.ID, movement.ProductID, movement.Kind, movement.Direction, movement.Quantity,
		movement.UnitPrice, movement.UnitCost, movement.StockBefore, movement.StockAfter,
		nullable(movement.Reference), movement.EntryID, movement.CreatedAt, nullable(movement.CreatedBy),
	).Scan(&movement.Seq)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// kardexQuery arma la consulta del kardex de un producto, más reciente primero.
func kardexQuery(productID string, f repository.KardexFilter) sq.SelectBuilder {
	q := psql.Select(movementColumns...).
		From(movementsTable).
		Where(sq.Eq{"product_id": productID})
	if f.From != nil {
		q = q.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(sq.LtOrEq{"created_at": *f.To})
	}
	if len(f.Kinds) > 0 {
		kinds := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			kinds[i] = string(k)
		}
		q = q.Where(sq.Eq{"kind": kinds})
	}
	q = q.OrderBy("seq DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

func (r *InventoryMovementRepo) selectRows(ctx context.Context, label string, q sq.SelectBuilder) ([]*entity.InventoryMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	list := make([]*entity.InventoryMovement, len(rows))
	for i, row := range rows {
		list[i] = row.toEntity()
	}
	return list, nil
}

// ListByProduct lista el kardex filtrado de un producto.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, f repository.KardexFilter) ([]*entity.InventoryMovement, error) {
	return r.selectRows(ctx, "list by product", kardexQuery(productID, f))
}

// ListForReplay devuelve todo el kardex del producto en orden de seq.
func (r *InventoryMovementRepo) ListForReplay(ctx context.Context, productID string) ([]*entity.InventoryMovement, error) {
	q := psql.Select(movementColumns...).
		From(movementsTable).
		Where(sq.Eq{"product_id": productID}).
		OrderBy("seq ASC")
	return r.selectRows(ctx, "list for replay", q)
}

// ListByEntry devuelve los movimientos que generó un asiento de documento.
func (r *InventoryMovementRepo) ListByEntry(ctx context.Context, entryID string) ([]*entity.InventoryMovement, error) {
	q := psql.Select(movementColumns...).
		From(movementsTable).
		Where(sq.Eq{"entry_id": entryID}).
		OrderBy("seq ASC")
	return r.selectRows(ctx, "list by entry", q)
}

// UpdateDerived reescribe stock y costo derivados de una fila del kardex.
func (r *InventoryMovementRepo) UpdateDerived(ctx context.Context, id string, stockBefore, stockAfter int64, unitCost decimal.Decimal) error {
	query := `UPDATE inventory_movements SET stock_before = $2, stock_after = $3, unit_cost = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, stockBefore, stockAfter, unitCost)
	if err != nil {
		return fmt.Errorf("update derived movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update derived movement=%s: no existe", id)
	}
	return nil
}
