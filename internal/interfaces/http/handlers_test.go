package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/jhoicas/backoffice-api/internal/application/accounting"
	"github.com/jhoicas/backoffice-api/internal/application/catalog"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/posting"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/backoffice-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/backoffice-api/pkg/jwt"
)

type APISuite struct {
	suite.Suite
	app  *fiber.App
	tree *accounting.AccountTree
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	store := memory.New()
	log := zerolog.Nop()
	s.tree = accounting.NewAccountTree(store, store.Repos(), log)
	costing := inventory.NewCostingEngine(store, store.Repos(), log)
	journal := accounting.NewJournalEngine(store, store.Repos(), log)
	accounts := posting.DefaultAccounts()

	for code, typ := range map[string]entity.AccountType{
		accounts.Cash: entity.AccountAsset, accounts.Receivables: entity.AccountAsset, accounts.Inventory: entity.AccountAsset,
		accounts.Payables: entity.AccountLiability, accounts.VATPayable: entity.AccountLiability,
		accounts.Revenue: entity.AccountIncome, accounts.Adjustments: entity.AccountIncome,
		accounts.COGS: entity.AccountExpense, accounts.Shrinkage: entity.AccountExpense,
	} {
		_, err := s.tree.Create(context.Background(), accounting.AccountInput{Code: code, Name: "Cuenta " + code, Type: typ})
		s.Require().NoError(err)
	}

	s.app = fiber.New()
	apphttp.Router(s.app, apphttp.RouterDeps{
		ProductUC:   catalog.NewProductUseCase(store.Repos().Products),
		Costing:     costing,
		AccountTree: s.tree,
		Journal:     journal,
		Coordinator: posting.NewCoordinator(store, costing, journal, accounts, log),
		JWTSecret:   testJWTSecret,
	})
}

func (s *APISuite) call(method, path, role string, body any) (int, []byte) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(s.T(), role))
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, out
}

func (s *APISuite) decode(raw []byte, out any) {
	s.Require().NoError(json.Unmarshal(raw, out), string(raw))
}

func (s *APISuite) errorCode(raw []byte) string {
	var e dto.ErrorResponse
	s.decode(raw, &e)
	return e.Code
}

func (s *APISuite) createProduct(sku string) string {
	status, raw := s.call(http.MethodPost, "/api/products", pkgjwt.RoleWarehouse, map[string]any{"sku": sku, "name": "Producto " + sku})
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var p dto.ProductResponse
	s.decode(raw, &p)
	return p.ID
}

func (s *APISuite) TestCompraVentaYAnulacion() {
	id := s.createProduct("CAFE-500")

	status, raw := s.call(http.MethodPost, "/api/postings/purchases", pkgjwt.RoleAccountant, map[string]any{
		"voucher": "FC-1",
		"lines": []map[string]any{
			{"product_id": id, "quantity": 100, "unit_price": "10"},
			{"product_id": id, "quantity": 50, "unit_price": "13"},
		},
	})
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var purchase dto.PostingResponse
	s.decode(raw, &purchase)
	s.Len(purchase.Movements, 2)
	s.Equal("PURCHASE", purchase.Entry.Source)

	status, raw = s.call(http.MethodGet, "/api/inventory/products/"+id+"/stock", pkgjwt.RoleWarehouse, nil)
	s.Require().Equal(http.StatusOK, status)
	var stock dto.StockResponse
	s.decode(raw, &stock)
	s.Equal(int64(150), stock.Stock)
	s.Equal("11.00", stock.Cost.StringFixed(2))

	sale := func(voucher string, qty int) (int, []byte) {
		return s.call(http.MethodPost, "/api/postings/sales", pkgjwt.RoleAccountant, map[string]any{
			"voucher": voucher,
			"lines":   []map[string]any{{"product_id": id, "quantity": qty, "unit_price": "20", "tax_rate": "0.19"}},
		})
	}
	status, raw = sale("FV-1", 200)
	s.Equal(http.StatusConflict, status)
	s.Equal("INSUFFICIENT_STOCK", s.errorCode(raw))

	status, raw = sale("FV-1", 30)
	s.Require().Equal(http.StatusCreated, status, string(raw))

	status, raw = s.call(http.MethodGet, "/api/inventory/products/"+id+"/kardex?types=SALIDA", pkgjwt.RoleWarehouse, nil)
	s.Require().Equal(http.StatusOK, status)
	var kardex []dto.MovementResponse
	s.decode(raw, &kardex)
	s.Require().Len(kardex, 1)
	s.Equal("FV-1", kardex[0].Reference)
	s.Equal(int64(120), kardex[0].StockAfter)

	status, raw = s.call(http.MethodPost, "/api/postings/sales/FV-1/void", pkgjwt.RoleAccountant, nil)
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var void dto.PostingResponse
	s.decode(raw, &void)
	s.Equal("VOID", void.Entry.Source)

	status, raw = s.call(http.MethodPost, "/api/postings/sales/FV-1/void", pkgjwt.RoleAccountant, nil)
	s.Equal(http.StatusConflict, status)
	s.Equal("ALREADY_VOIDED", s.errorCode(raw))

	status, raw = s.call(http.MethodGet, "/api/inventory/products/"+id+"/stock-check?quantity=150", pkgjwt.RoleWarehouse, nil)
	s.Require().Equal(http.StatusOK, status)
	var check dto.StockCheckResponse
	s.decode(raw, &check)
	s.True(check.Sufficient)
}

func (s *APISuite) TestAsientosManuales() {
	entry := func(voucher, credit string) map[string]any {
		return map[string]any{
			"description": "Aporte en efectivo",
			"voucher":     voucher,
			"lines": []map[string]any{
				{"account_code": "1105", "side": "DEBIT", "amount": "100.00"},
				{"account_code": "4295", "side": "CREDIT", "amount": credit},
			},
		}
	}

	status, raw := s.call(http.MethodPost, "/api/journal/entries", pkgjwt.RoleAccountant, entry("CE-1", "100.02"))
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("UNBALANCED_ENTRY", s.errorCode(raw))

	status, raw = s.call(http.MethodPost, "/api/journal/entries", pkgjwt.RoleAccountant, entry("CE-1", "100.01"))
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var created dto.JournalEntryResponse
	s.decode(raw, &created)

	status, raw = s.call(http.MethodPost, "/api/journal/entries", pkgjwt.RoleAccountant, entry("CE-1", "100.00"))
	s.Equal(http.StatusConflict, status)
	s.Equal("DUPLICATE_VOUCHER", s.errorCode(raw))

	status, raw = s.call(http.MethodGet, "/api/journal/entries?voucher=CE-1", pkgjwt.RoleWarehouse, nil)
	s.Require().Equal(http.StatusOK, status)
	var list []dto.JournalEntryResponse
	s.decode(raw, &list)
	s.Len(list, 1)

	status, _ = s.call(http.MethodDelete, "/api/journal/entries/"+created.ID, pkgjwt.RoleAccountant, nil)
	s.Equal(http.StatusNoContent, status)
	status, raw = s.call(http.MethodGet, "/api/journal/entries/"+created.ID, pkgjwt.RoleAccountant, nil)
	s.Equal(http.StatusNotFound, status)
	s.Equal("ENTRY_NOT_FOUND", s.errorCode(raw))
}

func (s *APISuite) TestValidarCuadreSinRegistrar() {
	status, raw := s.call(http.MethodPost, "/api/journal/validate", pkgjwt.RoleWarehouse, map[string]any{
		"lines": []map[string]any{
			{"account_code": "1105", "side": "DEBIT", "amount": "50"},
			{"account_code": "4135", "side": "CREDIT", "amount": "49.99"},
		},
	})
	s.Require().Equal(http.StatusOK, status)
	var res struct {
		Balanced bool `json:"balanced"`
	}
	s.decode(raw, &res)
	s.True(res.Balanced)
}

func (s *APISuite) TestJerarquiaCiclica() {
	status, raw := s.call(http.MethodPost, "/api/accounts", pkgjwt.RoleAccountant, map[string]any{"code": "11", "name": "Disponible", "type": "ASSET"})
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var parent dto.AccountResponse
	s.decode(raw, &parent)

	status, raw = s.call(http.MethodGet, "/api/accounts/code/1105", pkgjwt.RoleAccountant, nil)
	s.Require().Equal(http.StatusOK, status)
	var caja dto.AccountResponse
	s.decode(raw, &caja)

	status, _ = s.call(http.MethodPut, "/api/accounts/"+caja.ID, pkgjwt.RoleAccountant, map[string]any{"parent_id": parent.ID})
	s.Require().Equal(http.StatusOK, status)

	status, raw = s.call(http.MethodPut, "/api/accounts/"+parent.ID, pkgjwt.RoleAccountant, map[string]any{"parent_id": caja.ID})
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("CYCLIC_HIERARCHY", s.errorCode(raw))

	status, raw = s.call(http.MethodGet, "/api/accounts/"+parent.ID+"/descendants", pkgjwt.RoleAccountant, nil)
	s.Require().Equal(http.StatusOK, status)
	var desc []dto.AccountResponse
	s.decode(raw, &desc)
	s.Require().Len(desc, 1)
	s.Equal("1105", desc[0].Code)
}

func (s *APISuite) TestValidacionYPermisos() {
	status, raw := s.call(http.MethodPost, "/api/products", pkgjwt.RoleWarehouse, map[string]any{"name": "sin sku"})
	s.Equal(http.StatusBadRequest, status)
	s.Equal("VALIDATION", s.errorCode(raw))

	status, raw = s.call(http.MethodPost, "/api/postings/purchases", pkgjwt.RoleWarehouse, map[string]any{"voucher": "FC-1"})
	s.Equal(http.StatusForbidden, status)
	s.Equal("FORBIDDEN", s.errorCode(raw))

	status, _ = s.call(http.MethodGet, "/api/products", "", nil)
	s.Equal(http.StatusUnauthorized, status)

	status, raw = s.call(http.MethodGet, "/api/products/nope", pkgjwt.RoleWarehouse, nil)
	s.Equal(http.StatusNotFound, status)
	s.Equal("PRODUCT_NOT_FOUND", s.errorCode(raw))

	status, raw = s.call(http.MethodGet, "/api/inventory/products/x/kardex?from=ayer", pkgjwt.RoleWarehouse, nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("VALIDATION", s.errorCode(raw))
}

func (s *APISuite) TestMermaSinCosto() {
	id := s.createProduct("PAN-1")
	status, raw := s.call(http.MethodPost, "/api/postings/shrinkages", pkgjwt.RoleAccountant, map[string]any{"voucher": "ME-1", "product_id": id, "quantity": 1})
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("ZERO_COST", s.errorCode(raw))
}
