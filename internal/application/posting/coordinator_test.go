package posting

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/accounting"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CoordinatorSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	tree    *accounting.AccountTree
	costing *inventory.CostingEngine
	journal *accounting.JournalEngine
	coord   *Coordinator
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	log := zerolog.Nop()
	s.tree = accounting.NewAccountTree(s.store, s.store.Repos(), log)
	s.costing = inventory.NewCostingEngine(s.store, s.store.Repos(), log)
	s.journal = accounting.NewJournalEngine(s.store, s.store.Repos(), log)
	s.coord = NewCoordinator(s.store, s.costing, s.journal, DefaultAccounts(), log)

	acc := DefaultAccounts()
	for code, typ := range map[string]entity.AccountType{
		acc.Cash: entity.AccountAsset, acc.Receivables: entity.AccountAsset, acc.Inventory: entity.AccountAsset,
		acc.Payables: entity.AccountLiability, acc.VATPayable: entity.AccountLiability,
		acc.Revenue: entity.AccountIncome, acc.Adjustments: entity.AccountIncome,
		acc.COGS: entity.AccountExpense, acc.Shrinkage: entity.AccountExpense,
	} {
		_, err := s.tree.Create(s.ctx, accounting.AccountInput{Code: code, Name: "Cuenta " + code, Type: typ})
		s.Require().NoError(err)
	}
	for _, id := range []string{"p1", "p2"} {
		now := time.Now()
		s.Require().NoError(s.store.Repos().Products.Create(s.ctx, &entity.Product{
			ID: id, SKU: "SKU-" + id, Name: id, Status: entity.StatusActive, CreatedAt: now, UpdatedAt: now,
		}))
	}
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func doc(voucher string) DocumentInput {
	return DocumentInput{Voucher: voucher, Actor: "u1"}
}

func (s *CoordinatorSuite) purchase(voucher string, lines ...ItemLine) *Result {
	res, err := s.coord.PostPurchase(s.ctx, PurchaseInput{DocumentInput: doc(voucher), Lines: lines})
	s.Require().NoError(err)
	return res
}

func (s *CoordinatorSuite) lineAmount(e *entity.JournalEntry, code string, side entity.Side) decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.AccountCode == code && l.Side == side {
			total = total.Add(l.Amount)
		}
	}
	return total
}

func (s *CoordinatorSuite) stock(id string) int64 {
	v, err := s.costing.GetCurrentStock(s.ctx, id)
	s.Require().NoError(err)
	return v
}

func (s *CoordinatorSuite) TestPostPurchase() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 100, UnitPrice: dec("10")})
	res := s.purchase("FC-2", ItemLine{ProductID: "p1", Quantity: 50, UnitPrice: dec("13")})

	s.Len(res.Movements, 1)
	s.Equal("FC-2", res.Movements[0].Reference)
	s.Equal(entity.SourcePurchase, res.Entry.Source)
	s.Equal("650.00", s.lineAmount(res.Entry, "1435", entity.SideDebit).StringFixed(2))
	s.Equal("650.00", s.lineAmount(res.Entry, "2205", entity.SideCredit).StringFixed(2))

	cost, _ := s.costing.GetCurrentCost(s.ctx, "p1")
	s.Equal("11.00", cost.StringFixed(2))
	s.Equal(int64(150), s.stock("p1"))
}

func (s *CoordinatorSuite) TestPostSaleConIVAYCosto() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 100, UnitPrice: dec("10")}, ItemLine{ProductID: "p1", Quantity: 50, UnitPrice: dec("13")})

	res, err := s.coord.PostSale(s.ctx, SaleInput{
		DocumentInput: doc("FV-1"),
		OnCredit:      true,
		Lines:         []ItemLine{{ProductID: "p1", Quantity: 30, UnitPrice: dec("20"), TaxRate: dec("0.19")}},
	})
	s.Require().NoError(err)

	e := res.Entry
	s.Equal(entity.SourceSale, e.Source)
	s.Equal("714.00", s.lineAmount(e, "1305", entity.SideDebit).StringFixed(2))
	s.Equal("600.00", s.lineAmount(e, "4135", entity.SideCredit).StringFixed(2))
	s.Equal("114.00", s.lineAmount(e, "2408", entity.SideCredit).StringFixed(2))
	s.Equal("330.00", s.lineAmount(e, "6135", entity.SideDebit).StringFixed(2))
	s.Equal("330.00", s.lineAmount(e, "1435", entity.SideCredit).StringFixed(2))
	s.True(s.journal.ValidateBalance(toInputs(e)).Balanced)

	s.Equal(int64(120), s.stock("p1"))
}

func toInputs(e *entity.JournalEntry) []accounting.LineInput {
	out := make([]accounting.LineInput, len(e.Lines))
	for i, l := range e.Lines {
		out[i] = accounting.LineInput{AccountID: l.AccountID, Side: l.Side, Amount: l.Amount}
	}
	return out
}

func (s *CoordinatorSuite) TestPostSaleStockInsuficienteEsAtomico() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 10, UnitPrice: dec("10")}, ItemLine{ProductID: "p2", Quantity: 1, UnitPrice: dec("5")})

	_, err := s.coord.PostSale(s.ctx, SaleInput{
		DocumentInput: doc("FV-1"),
		Lines: []ItemLine{
			{ProductID: "p1", Quantity: 5, UnitPrice: dec("20")},
			{ProductID: "p2", Quantity: 2, UnitPrice: dec("20")},
		},
	})
	s.ErrorIs(err, domain.ErrInsufficientStock)

	s.Equal(int64(10), s.stock("p1"), "la primera línea no debe quedar aplicada")
	for _, id := range []string{"p1", "p2"} {
		movs, err := s.store.Repos().Movements.ListForReplay(s.ctx, id)
		s.Require().NoError(err)
		s.Len(movs, 1, "solo la compra queda en el kardex de %s", id)
	}
	entries, err := s.journal.ListEntries(s.ctx, repository.EntryFilter{Voucher: "FV-1"})
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *CoordinatorSuite) TestCuentaInactivaRevierteKardex() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 10, UnitPrice: dec("10")})
	vat, err := s.tree.GetByCode(s.ctx, "2408")
	s.Require().NoError(err)
	_, err = s.tree.Deactivate(s.ctx, vat.ID)
	s.Require().NoError(err)

	_, err = s.coord.PostSale(s.ctx, SaleInput{
		DocumentInput: doc("FV-1"),
		Lines:         []ItemLine{{ProductID: "p1", Quantity: 2, UnitPrice: dec("20"), TaxRate: dec("0.19")}},
	})
	var inactive *domain.InactiveAccountError
	s.Require().ErrorAs(err, &inactive)
	s.Equal(int64(10), s.stock("p1"))
}

func (s *CoordinatorSuite) TestComprobanteRepetidoNoDuplicaKardex() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 10, UnitPrice: dec("10")})
	_, err := s.coord.PostPurchase(s.ctx, PurchaseInput{DocumentInput: doc("FC-1"), Lines: []ItemLine{{ProductID: "p1", Quantity: 5, UnitPrice: dec("10")}}})
	s.ErrorIs(err, domain.ErrDuplicateVoucher)
	s.Equal(int64(10), s.stock("p1"))
}

func (s *CoordinatorSuite) TestPostShrinkage() {
	_, err := s.coord.PostShrinkage(s.ctx, ShrinkageInput{DocumentInput: doc("ME-0"), ProductID: "p1", Quantity: 1})
	s.ErrorIs(err, domain.ErrZeroCost)

	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 10, UnitPrice: dec("12.50")})
	res, err := s.coord.PostShrinkage(s.ctx, ShrinkageInput{DocumentInput: doc("ME-1"), ProductID: "p1", Quantity: 2})
	s.Require().NoError(err)
	s.Equal(entity.MovementMerma, res.Movements[0].Kind)
	s.Equal("25.00", s.lineAmount(res.Entry, "5199", entity.SideDebit).StringFixed(2))
	s.Equal("25.00", s.lineAmount(res.Entry, "1435", entity.SideCredit).StringFixed(2))
	s.Equal(int64(8), s.stock("p1"))
}

func (s *CoordinatorSuite) TestPostAdjustment() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 10, UnitPrice: dec("10")})

	price := dec("16")
	up, err := s.coord.PostAdjustment(s.ctx, AdjustmentInput{DocumentInput: doc("AJ-1"), ProductID: "p1", Direction: entity.DirectionIncrease, Quantity: 5, UnitPrice: &price})
	s.Require().NoError(err)
	s.Equal("80.00", s.lineAmount(up.Entry, "1435", entity.SideDebit).StringFixed(2))
	s.Equal("80.00", s.lineAmount(up.Entry, "4295", entity.SideCredit).StringFixed(2))
	cost, _ := s.costing.GetCurrentCost(s.ctx, "p1")
	s.Equal("12.00", cost.StringFixed(2))

	down, err := s.coord.PostAdjustment(s.ctx, AdjustmentInput{DocumentInput: doc("AJ-2"), ProductID: "p1", Direction: entity.DirectionDecrease, Quantity: 3})
	s.Require().NoError(err)
	s.Equal("36.00", s.lineAmount(down.Entry, "4295", entity.SideDebit).StringFixed(2))
	s.Equal("36.00", s.lineAmount(down.Entry, "1435", entity.SideCredit).StringFixed(2))
	s.Equal(int64(12), s.stock("p1"))

	_, err = s.coord.PostAdjustment(s.ctx, AdjustmentInput{DocumentInput: doc("AJ-3"), ProductID: "p1", Quantity: 1})
	s.ErrorIs(err, domain.ErrInvalidDirection)
}

func (s *CoordinatorSuite) TestVoidSale() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 100, UnitPrice: dec("10")}, ItemLine{ProductID: "p2", Quantity: 10, UnitPrice: dec("4")})
	sale, err := s.coord.PostSale(s.ctx, SaleInput{
		DocumentInput: doc("FV-1"),
		Lines: []ItemLine{
			{ProductID: "p2", Quantity: 4, UnitPrice: dec("9")},
			{ProductID: "p1", Quantity: 40, UnitPrice: dec("15")},
		},
	})
	s.Require().NoError(err)

	void, err := s.coord.VoidSale(s.ctx, "FV-1", "u2")
	s.Require().NoError(err)
	s.Equal(entity.SourceVoid, void.Entry.Source)
	s.Equal("FV-1-REV", void.Entry.VoucherValue())
	s.Equal(sale.Entry.ID, *void.Entry.ReversesEntryID)
	s.Len(void.Movements, 2)
	for _, m := range void.Movements {
		s.Equal(entity.MovementEntrada, m.Kind)
		s.Equal("FV-1-REV", m.Reference)
	}

	s.Equal(int64(100), s.stock("p1"))
	s.Equal(int64(10), s.stock("p2"))
	cost, _ := s.costing.GetCurrentCost(s.ctx, "p1")
	s.Equal("10.00", cost.StringFixed(2))

	_, err = s.coord.VoidSale(s.ctx, "FV-1", "u2")
	s.ErrorIs(err, domain.ErrAlreadyVoided)
	_, err = s.coord.VoidSale(s.ctx, "FC-1", "u2")
	s.ErrorIs(err, domain.ErrInvalidTransition)
	_, err = s.coord.VoidSale(s.ctx, "FV-404", "u2")
	s.ErrorIs(err, domain.ErrEntryNotFound)
}

func (s *CoordinatorSuite) TestVoidSaleSoloDevuelveMovimientosDeLaVenta() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 10, UnitPrice: dec("10")})
	// salida manual previa que casualmente usa el texto del comprobante
	_, err := s.costing.RecordMovement(s.ctx, inventory.MovementInput{
		ProductID: "p1", Kind: entity.MovementSalida, Quantity: 3, UnitPrice: dec("10"), Reference: "FV-1",
	})
	s.Require().NoError(err)

	sale, err := s.coord.PostSale(s.ctx, SaleInput{
		DocumentInput: doc("FV-1"),
		Lines:         []ItemLine{{ProductID: "p1", Quantity: 2, UnitPrice: dec("15")}},
	})
	s.Require().NoError(err)
	s.Require().Len(sale.Movements, 1)
	s.Require().NotNil(sale.Movements[0].EntryID)
	s.Equal(sale.Entry.ID, *sale.Movements[0].EntryID)
	s.Equal(int64(5), s.stock("p1"))

	// ya contabilizado, el comprobante no se puede usar como referencia manual
	_, err = s.costing.RecordMovement(s.ctx, inventory.MovementInput{
		ProductID: "p1", Kind: entity.MovementSalida, Quantity: 1, UnitPrice: dec("10"), Reference: "FV-1",
	})
	s.ErrorIs(err, domain.ErrReservedReference)

	void, err := s.coord.VoidSale(s.ctx, "FV-1", "u2")
	s.Require().NoError(err)
	s.Require().Len(void.Movements, 1)
	s.Equal(int64(2), void.Movements[0].Quantity)
	s.Equal(void.Entry.ID, *void.Movements[0].EntryID)
	s.Equal(int64(7), s.stock("p1"))

	// lo que vuelve al kardex es lo mismo que se reversa en inventario
	returned := void.Movements[0].TotalCost()
	s.True(s.lineAmount(void.Entry, DefaultAccounts().Inventory, entity.SideDebit).Equal(returned), returned.String())
}

func (s *CoordinatorSuite) TestVentaSoloSeReversaAnulando() {
	s.purchase("FC-1", ItemLine{ProductID: "p1", Quantity: 10, UnitPrice: dec("10")})
	sale, err := s.coord.PostSale(s.ctx, SaleInput{
		DocumentInput: doc("FV-1"),
		Lines:         []ItemLine{{ProductID: "p1", Quantity: 4, UnitPrice: dec("15")}},
	})
	s.Require().NoError(err)

	_, err = s.journal.ReverseEntry(s.ctx, sale.Entry.ID, "u2")
	s.ErrorIs(err, domain.ErrDocumentEntry)
	s.Equal(int64(6), s.stock("p1"))

	void, err := s.coord.VoidSale(s.ctx, "FV-1", "u2")
	s.Require().NoError(err)
	s.Len(void.Movements, 1)
	s.Equal(int64(10), s.stock("p1"))
}

func (s *CoordinatorSuite) TestValidaciones() {
	_, err := s.coord.PostPurchase(s.ctx, PurchaseInput{Lines: []ItemLine{{ProductID: "p1", Quantity: 1, UnitPrice: dec("1")}}})
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.coord.PostPurchase(s.ctx, PurchaseInput{DocumentInput: doc("FC-1")})
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.coord.PostSale(s.ctx, SaleInput{DocumentInput: doc("FV-1"), Lines: []ItemLine{{ProductID: "p1", Quantity: 0, UnitPrice: dec("1")}}})
	s.ErrorIs(err, domain.ErrInvalidQuantity)
	_, err = s.coord.PostPurchase(s.ctx, PurchaseInput{DocumentInput: doc("FC-2"), Lines: []ItemLine{{ProductID: "nope", Quantity: 1, UnitPrice: dec("1")}}})
	s.ErrorIs(err, domain.ErrProductNotFound)
}

func (s *CoordinatorSuite) TestDefaultAccountsValidas() {
	s.NoError(DefaultAccounts().Validate())
	bad := DefaultAccounts()
	bad.COGS = "61-35"
	s.ErrorIs(bad.Validate(), domain.ErrInvalidAccountCode)
}
