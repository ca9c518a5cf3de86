package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// InventoryHandler maneja kardex y valorización de inventario (protegido).
type InventoryHandler struct {
	engine *inventory.CostingEngine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.CostingEngine) *InventoryHandler {
	return &InventoryHandler{engine: engine}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Movimiento suelto, sin asiento contable. Para documentos use /api/postings.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, direction (AJUSTE), quantity, unit_price"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	mov, err := h.engine.RecordMovement(c.Context(), inventory.MovementInput{
		ProductID: in.ProductID,
		Kind:      entity.MovementKind(in.Type),
		Direction: entity.Direction(in.Direction),
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Reference: in.Reference,
		Actor:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// GetKardex godoc
// @Summary      Kardex del producto (más reciente primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        types   query  string  false  "Tipos separados por coma: ENTRADA,SALIDA,MERMA,AJUSTE"
// @Param        limit   query  int     false  "Límite"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/kardex [get]
func (h *InventoryHandler) GetKardex(c *fiber.Ctx) error {
	var q dto.KardexRequest
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	filter := repository.KardexFilter{
		From:   parseTime(q.From),
		To:     parseTime(q.To),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	for _, t := range strings.Split(q.Types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			filter.Kinds = append(filter.Kinds, entity.MovementKind(strings.ToUpper(t)))
		}
	}
	list, err := h.engine.GetKardex(c.Context(), c.Params("id"), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementList(list))
}

// GetStock godoc
// @Summary      Stock y costo promedio vigentes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	id := c.Params("id")
	stock, err := h.engine.GetCurrentStock(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	cost, err := h.engine.GetCurrentCost(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: id, Stock: stock, Cost: cost})
}

// CheckStock godoc
// @Summary      Validar disponibilidad sin modificar nada
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true  "ID del producto"
// @Param        quantity  query  int     true  "Cantidad requerida"
// @Success      200  {object}  dto.StockCheckResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock-check [get]
func (h *InventoryHandler) CheckStock(c *fiber.Ctx) error {
	id := c.Params("id")
	qty := int64(c.QueryInt("quantity", 0))
	ok, err := h.engine.ValidateSufficientStock(c.Context(), id, qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockCheckResponse{ProductID: id, Quantity: qty, Sufficient: ok})
}

// Recalculate godoc
// @Summary      Recalcular costos desde el kardex (reparación idempotente)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  inventory.RecalculationResult
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/recalculate [post]
func (h *InventoryHandler) Recalculate(c *fiber.Ctx) error {
	res, err := h.engine.RecalculateCosts(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
