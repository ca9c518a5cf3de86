package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/accounting"
	"github.com/jhoicas/backoffice-api/internal/application/catalog"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/posting"
	"github.com/jhoicas/backoffice-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *catalog.ProductUseCase
	Costing     *inventory.CostingEngine
	AccountTree *accounting.AccountTree
	Journal     *accounting.JournalEngine
	Coordinator *posting.Coordinator
	JWTSecret   string
}

// Router registra las rutas de la API. Toda ruta bajo /api exige Bearer Token;
// las escrituras además exigen rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	warehouse := RequireRole(jwt.RoleAdmin, jwt.RoleWarehouse)
	accountant := RequireRole(jwt.RoleAdmin, jwt.RoleAccountant)
	admin := RequireRole(jwt.RoleAdmin)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", warehouse, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/:id/deactivate", warehouse, productHandler.Deactivate)
	products.Post("/:id/activate", warehouse, productHandler.Activate)

	// Inventory (kardex)
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Costing)
	inv.Post("/movements", warehouse, inventoryHandler.RegisterMovement)
	inv.Get("/products/:id/kardex", inventoryHandler.GetKardex)
	inv.Get("/products/:id/stock", inventoryHandler.GetStock)
	inv.Get("/products/:id/stock-check", inventoryHandler.CheckStock)
	inv.Post("/products/:id/recalculate", admin, inventoryHandler.Recalculate)

	// Accounts (plan de cuentas)
	accounts := api.Group("/accounts")
	accountHandler := NewAccountHandler(deps.AccountTree)
	accounts.Post("/", accountant, accountHandler.Create)
	accounts.Get("/", accountHandler.List)
	accounts.Get("/code/:code", accountHandler.GetByCode)
	accounts.Get("/:id", accountHandler.GetByID)
	accounts.Put("/:id", accountant, accountHandler.Update)
	accounts.Get("/:id/descendants", accountHandler.Descendants)
	accounts.Post("/:id/deactivate", accountant, accountHandler.Deactivate)
	accounts.Post("/:id/activate", accountant, accountHandler.Activate)

	// Journal
	journal := api.Group("/journal")
	journalHandler := NewJournalHandler(deps.Journal)
	journal.Post("/validate", journalHandler.ValidateBalance)
	journal.Post("/entries", accountant, journalHandler.CreateEntry)
	journal.Get("/entries", journalHandler.ListEntries)
	journal.Get("/entries/:id", journalHandler.GetEntry)
	journal.Delete("/entries/:id", accountant, journalHandler.DeleteEntry)
	journal.Post("/entries/:id/reverse", accountant, journalHandler.ReverseEntry)

	// Postings (documentos con kardex y asiento en una transacción)
	postings := api.Group("/postings", accountant)
	postingHandler := NewPostingHandler(deps.Coordinator)
	postings.Post("/purchases", postingHandler.Purchase)
	postings.Post("/sales", postingHandler.Sale)
	postings.Post("/sales/:voucher/void", postingHandler.VoidSale)
	postings.Post("/shrinkages", postingHandler.Shrinkage)
	postings.Post("/adjustments", postingHandler.Adjustment)
}
