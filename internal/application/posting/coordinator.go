// Package posting contabiliza los documentos de inventario: cada compra, venta,
// merma, ajuste o anulación registra sus movimientos de kardex y su asiento en la
// misma transacción.
package posting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/accounting"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/money"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ItemLine línea de un documento de compra o venta.
// TaxRate es la tarifa de IVA como fracción (0.19); solo aplica en ventas.
type ItemLine struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// DocumentInput cabecera común de los documentos.
type DocumentInput struct {
	Voucher     string
	Date        time.Time
	Description string
	Actor       string
}

// PurchaseInput compra a proveedor.
type PurchaseInput struct {
	DocumentInput
	Lines []ItemLine
}

// SaleInput venta. OnCredit carga a Clientes; si no, a Caja.
type SaleInput struct {
	DocumentInput
	OnCredit bool
	Lines    []ItemLine
}

// ShrinkageInput merma de un producto, valorizada al costo promedio vigente.
type ShrinkageInput struct {
	DocumentInput
	ProductID string
	Quantity  int64
}

// AdjustmentInput ajuste por conteo físico. UnitPrice solo aplica a incrementos;
// si viene vacío se usa el costo promedio vigente.
type AdjustmentInput struct {
	DocumentInput
	ProductID string
	Direction entity.Direction
	Quantity  int64
	UnitPrice *decimal.Decimal
}

// Result movimientos y asiento que produjo una contabilización.
type Result struct {
	Entry     *entity.JournalEntry
	Movements []*entity.InventoryMovement
}

// Coordinator compone el motor de costeo y el libro diario en una sola unidad de trabajo.
type Coordinator struct {
	uow      repository.UnitOfWork
	costing  *inventory.CostingEngine
	journal  *accounting.JournalEngine
	accounts Accounts
	log      zerolog.Logger
	now      func() time.Time
}

// NewCoordinator construye el coordinador.
func NewCoordinator(uow repository.UnitOfWork, costing *inventory.CostingEngine, journal *accounting.JournalEngine, accounts Accounts, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		uow:      uow,
		costing:  costing,
		journal:  journal,
		accounts: accounts,
		log:      log.With().Str("component", "posting").Logger(),
		now:      time.Now,
	}
}

func (d DocumentInput) validate() error {
	if strings.TrimSpace(d.Voucher) == "" {
		return fmt.Errorf("%w: el documento requiere comprobante", domain.ErrInvalidInput)
	}
	return nil
}

func validateLines(lines []ItemLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: el documento no tiene líneas", domain.ErrInvalidInput)
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if !l.UnitPrice.IsPositive() {
			return domain.ErrInvalidUnitPrice
		}
		if l.TaxRate.IsNegative() {
			return fmt.Errorf("%w: tarifa de IVA negativa", domain.ErrInvalidInput)
		}
	}
	return nil
}

// lockProducts bloquea los productos en orden ascendente de ID para que dos
// documentos con los mismos productos no se bloqueen mutuamente.
func lockProducts(ctx context.Context, products repository.ProductRepository, ids []string) (map[string]*entity.Product, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)
	locked := make(map[string]*entity.Product, len(unique))
	for _, id := range unique {
		p, err := products.GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lock product id=%s: %w", id, err)
		}
		if p == nil {
			return nil, domain.ErrProductNotFound
		}
		locked[id] = p
	}
	return locked, nil
}

func lineProductIDs(lines []ItemLine) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	return ids
}

// entry arma el asiento del documento con el ID que ya llevan sus movimientos.
func (c *Coordinator) entry(id string, doc DocumentInput, source entity.EntrySource, fallback string, lines []accounting.LineInput) accounting.EntryInput {
	desc := doc.Description
	if desc == "" {
		desc = fallback + " " + doc.Voucher
	}
	return accounting.EntryInput{
		ID:          id,
		Date:        doc.Date,
		Description: desc,
		Voucher:     doc.Voucher,
		Source:      source,
		Actor:       doc.Actor,
		Lines:       lines,
	}
}

func debit(code string, amount decimal.Decimal) accounting.LineInput {
	return accounting.LineInput{AccountCode: code, Side: entity.SideDebit, Amount: amount}
}

func credit(code string, amount decimal.Decimal) accounting.LineInput {
	return accounting.LineInput{AccountCode: code, Side: entity.SideCredit, Amount: amount}
}

// run ejecuta fn en una unidad de trabajo. entryID es el ID que tomará el asiento
// del documento; cada movimiento de kardex lo guarda para que la anulación
// encuentre exactamente los movimientos del documento.
func (c *Coordinator) run(ctx context.Context, op, voucher string, fn func(ctx context.Context, repos repository.Repos, entryID string, now time.Time) (*Result, error)) (*Result, error) {
	var res *Result
	err := c.uow.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		var err error
		res, err = fn(ctx, repos, uuid.New().String(), c.now())
		return err
	})
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Str("voucher", voucher).Msg("contabilización rechazada")
		return nil, err
	}
	c.log.Info().
		Str("op", op).
		Str("voucher", voucher).
		Str("entry_id", res.Entry.ID).
		Int("movements", len(res.Movements)).
		Msg("documento contabilizado")
	return res, nil
}

// PostPurchase registra una ENTRADA por línea y el asiento D Inventario / C Proveedores.
func (c *Coordinator) PostPurchase(ctx context.Context, in PurchaseInput) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	return c.run(ctx, "purchase", in.Voucher, func(ctx context.Context, repos repository.Repos, entryID string, now time.Time) (*Result, error) {
		if _, err := lockProducts(ctx, repos.Products, lineProductIDs(in.Lines)); err != nil {
			return nil, err
		}
		res := &Result{}
		total := decimal.Zero
		for _, l := range in.Lines {
			mov, err := c.costing.RecordMovementInTx(ctx, repos, inventory.MovementInput{
				ProductID: l.ProductID,
				Kind:      entity.MovementEntrada,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Reference: in.Voucher,
				EntryID:   entryID,
				Actor:     in.Actor,
			}, now)
			if err != nil {
				return nil, err
			}
			res.Movements = append(res.Movements, mov)
			total = total.Add(money.Extend(l.Quantity, l.UnitPrice))
		}
		entry, err := c.journal.CreateEntryInTx(ctx, repos, c.entry(entryID, in.DocumentInput, entity.SourcePurchase, "Compra", []accounting.LineInput{
			debit(c.accounts.Inventory, total),
			credit(c.accounts.Payables, total),
		}), now)
		if err != nil {
			return nil, err
		}
		res.Entry = entry
		return res, nil
	})
}

// PostSale registra una SALIDA por línea al precio de venta y el asiento de la
// factura: D Clientes o Caja por el total, C Ingresos por el neto, C IVA por el
// impuesto y D Costo de ventas / C Inventario por el costo de lo vendido.
func (c *Coordinator) PostSale(ctx context.Context, in SaleInput) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	return c.run(ctx, "sale", in.Voucher, func(ctx context.Context, repos repository.Repos, entryID string, now time.Time) (*Result, error) {
		if _, err := lockProducts(ctx, repos.Products, lineProductIDs(in.Lines)); err != nil {
			return nil, err
		}
		res := &Result{}
		net, tax, cogs := decimal.Zero, decimal.Zero, decimal.Zero
		for _, l := range in.Lines {
			mov, err := c.costing.RecordMovementInTx(ctx, repos, inventory.MovementInput{
				ProductID: l.ProductID,
				Kind:      entity.MovementSalida,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Reference: in.Voucher,
				EntryID:   entryID,
				Actor:     in.Actor,
			}, now)
			if err != nil {
				return nil, err
			}
			res.Movements = append(res.Movements, mov)
			lineNet := money.Extend(l.Quantity, l.UnitPrice)
			net = net.Add(lineNet)
			tax = tax.Add(money.Round(lineNet.Mul(l.TaxRate)))
			cogs = cogs.Add(money.Round(mov.TotalCost()))
		}

		receivable := c.accounts.Cash
		if in.OnCredit {
			receivable = c.accounts.Receivables
		}
		lines := []accounting.LineInput{
			debit(receivable, net.Add(tax)),
			credit(c.accounts.Revenue, net),
		}
		if tax.IsPositive() {
			lines = append(lines, credit(c.accounts.VATPayable, tax))
		}
		if cogs.IsPositive() {
			lines = append(lines, debit(c.accounts.COGS, cogs), credit(c.accounts.Inventory, cogs))
		}
		entry, err := c.journal.CreateEntryInTx(ctx, repos, c.entry(entryID, in.DocumentInput, entity.SourceSale, "Venta", lines), now)
		if err != nil {
			return nil, err
		}
		res.Entry = entry
		return res, nil
	})
}

// PostShrinkage registra la MERMA al costo promedio vigente y el asiento
// D Pérdidas / C Inventario.
func (c *Coordinator) PostShrinkage(ctx context.Context, in ShrinkageInput) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return c.run(ctx, "shrinkage", in.Voucher, func(ctx context.Context, repos repository.Repos, entryID string, now time.Time) (*Result, error) {
		locked, err := lockProducts(ctx, repos.Products, []string{in.ProductID})
		if err != nil {
			return nil, err
		}
		cost := locked[in.ProductID].Cost
		if !cost.IsPositive() {
			return nil, domain.ErrZeroCost
		}
		mov, err := c.costing.RecordMovementInTx(ctx, repos, inventory.MovementInput{
			ProductID: in.ProductID,
			Kind:      entity.MovementMerma,
			Quantity:  in.Quantity,
			UnitPrice: cost,
			Reference: in.Voucher,
			EntryID:   entryID,
			Actor:     in.Actor,
		}, now)
		if err != nil {
			return nil, err
		}
		value := money.Round(mov.TotalCost())
		entry, err := c.journal.CreateEntryInTx(ctx, repos, c.entry(entryID, in.DocumentInput, entity.SourceShrinkage, "Merma", []accounting.LineInput{
			debit(c.accounts.Shrinkage, value),
			credit(c.accounts.Inventory, value),
		}), now)
		if err != nil {
			return nil, err
		}
		return &Result{Entry: entry, Movements: []*entity.InventoryMovement{mov}}, nil
	})
}

// PostAdjustment registra un AJUSTE de conteo físico. Un incremento se carga a
// Inventario contra Ajustes; una disminución al revés.
func (c *Coordinator) PostAdjustment(ctx context.Context, in AdjustmentInput) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.Direction != entity.DirectionIncrease && in.Direction != entity.DirectionDecrease {
		return nil, domain.ErrInvalidDirection
	}
	if in.UnitPrice != nil && !in.UnitPrice.IsPositive() {
		return nil, domain.ErrInvalidUnitPrice
	}
	return c.run(ctx, "adjustment", in.Voucher, func(ctx context.Context, repos repository.Repos, entryID string, now time.Time) (*Result, error) {
		locked, err := lockProducts(ctx, repos.Products, []string{in.ProductID})
		if err != nil {
			return nil, err
		}
		price := locked[in.ProductID].Cost
		if in.Direction == entity.DirectionIncrease && in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		if !price.IsPositive() {
			return nil, domain.ErrZeroCost
		}
		mov, err := c.costing.RecordMovementInTx(ctx, repos, inventory.MovementInput{
			ProductID: in.ProductID,
			Kind:      entity.MovementAjuste,
			Direction: in.Direction,
			Quantity:  in.Quantity,
			UnitPrice: price,
			Reference: in.Voucher,
			EntryID:   entryID,
			Actor:     in.Actor,
		}, now)
		if err != nil {
			return nil, err
		}
		value := money.Extend(in.Quantity, price)
		lines := []accounting.LineInput{
			debit(c.accounts.Inventory, value),
			credit(c.accounts.Adjustments, value),
		}
		if in.Direction == entity.DirectionDecrease {
			lines = []accounting.LineInput{
				debit(c.accounts.Adjustments, value),
				credit(c.accounts.Inventory, value),
			}
		}
		entry, err := c.journal.CreateEntryInTx(ctx, repos, c.entry(entryID, in.DocumentInput, entity.SourceAdjustment, "Ajuste de inventario", lines), now)
		if err != nil {
			return nil, err
		}
		return &Result{Entry: entry, Movements: []*entity.InventoryMovement{mov}}, nil
	})
}

// VoidSale anula una venta: reversa su asiento y devuelve al inventario, a su costo
// atribuido, cada SALIDA que registró la venta. Los movimientos manuales que usen
// el mismo texto de referencia no se tocan. Una segunda anulación se rechaza.
func (c *Coordinator) VoidSale(ctx context.Context, voucher, actor string) (*Result, error) {
	voucher = strings.TrimSpace(voucher)
	if voucher == "" {
		return nil, fmt.Errorf("%w: el documento requiere comprobante", domain.ErrInvalidInput)
	}
	return c.run(ctx, "void", voucher, func(ctx context.Context, repos repository.Repos, _ string, now time.Time) (*Result, error) {
		orig, err := repos.Journal.GetByVoucher(ctx, voucher)
		if err != nil {
			return nil, fmt.Errorf("get entry voucher=%s: %w", voucher, err)
		}
		if orig == nil {
			return nil, domain.ErrEntryNotFound
		}
		if orig.Source != entity.SourceSale {
			return nil, fmt.Errorf("%w: el comprobante %s no es una venta", domain.ErrInvalidTransition, voucher)
		}
		voided, err := repos.Journal.HasReversal(ctx, orig.ID)
		if err != nil {
			return nil, fmt.Errorf("reversal entry id=%s: %w", orig.ID, err)
		}
		if voided {
			return nil, domain.ErrAlreadyVoided
		}

		movements, err := repos.Movements.ListByEntry(ctx, orig.ID)
		if err != nil {
			return nil, fmt.Errorf("movements entry=%s: %w", orig.ID, err)
		}
		ids := make([]string, 0, len(movements))
		for _, m := range movements {
			ids = append(ids, m.ProductID)
		}
		if _, err := lockProducts(ctx, repos.Products, ids); err != nil {
			return nil, err
		}

		rev, err := c.journal.ReverseEntryInTx(ctx, repos, orig.ID, actor, entity.SourceVoid, now)
		if err != nil {
			return nil, err
		}
		res := &Result{Entry: rev}
		for _, m := range movements {
			if m.Kind != entity.MovementSalida || m.UnitCost == nil || !m.UnitCost.IsPositive() {
				continue
			}
			back, err := c.costing.RecordMovementInTx(ctx, repos, inventory.MovementInput{
				ProductID: m.ProductID,
				Kind:      entity.MovementEntrada,
				Quantity:  m.Quantity,
				UnitPrice: *m.UnitCost,
				Reference: voucher + accounting.ReversalSuffix,
				EntryID:   rev.ID,
				Actor:     actor,
			}, now)
			if err != nil {
				return nil, err
			}
			res.Movements = append(res.Movements, back)
		}
		return res, nil
	})
}
