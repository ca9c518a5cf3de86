package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/posting"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// PostingHandler contabiliza documentos de inventario (protegido).
type PostingHandler struct {
	coord *posting.Coordinator
}

// NewPostingHandler construye el handler.
func NewPostingHandler(coord *posting.Coordinator) *PostingHandler {
	return &PostingHandler{coord: coord}
}

func document(c *fiber.Ctx, h dto.DocumentHeader) posting.DocumentInput {
	var date time.Time
	if h.Date != nil {
		date = *h.Date
	}
	return posting.DocumentInput{Voucher: h.Voucher, Date: date, Description: h.Description, Actor: GetUserID(c)}
}

func itemLines(in []dto.DocumentLineRequest) []posting.ItemLine {
	out := make([]posting.ItemLine, len(in))
	for i, l := range in {
		out[i] = posting.ItemLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, TaxRate: l.TaxRate}
	}
	return out
}

func postingResponse(c *fiber.Ctx, status int, res *posting.Result) error {
	return c.Status(status).JSON(dto.PostingResponse{
		Entry:     dto.NewJournalEntryResponse(res.Entry),
		Movements: dto.NewMovementList(res.Movements),
	})
}

// Purchase godoc
// @Summary      Contabilizar compra
// @Description  ENTRADA por línea y asiento D Inventario / C Proveedores.
// @Tags         postings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PurchaseRequest  true  "comprobante y líneas"
// @Success      201   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/postings/purchases [post]
func (h *PostingHandler) Purchase(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.coord.PostPurchase(c.Context(), posting.PurchaseInput{DocumentInput: document(c, in.DocumentHeader), Lines: itemLines(in.Lines)})
	if err != nil {
		return writeError(c, err)
	}
	return postingResponse(c, fiber.StatusCreated, res)
}

// Sale godoc
// @Summary      Contabilizar venta
// @Description  SALIDA por línea y asiento de la factura con IVA y costo de ventas.
// @Tags         postings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleRequest  true  "comprobante, crédito y líneas"
// @Success      201   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/postings/sales [post]
func (h *PostingHandler) Sale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.coord.PostSale(c.Context(), posting.SaleInput{DocumentInput: document(c, in.DocumentHeader), OnCredit: in.OnCredit, Lines: itemLines(in.Lines)})
	if err != nil {
		return writeError(c, err)
	}
	return postingResponse(c, fiber.StatusCreated, res)
}

// VoidSale godoc
// @Summary      Anular venta
// @Description  Devuelve las unidades al costo atribuido y reversa el asiento.
// @Tags         postings
// @Security     Bearer
// @Produce      json
// @Param        voucher  path  string  true  "Comprobante de la venta"
// @Success      201  {object}  dto.PostingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/postings/sales/{voucher}/void [post]
func (h *PostingHandler) VoidSale(c *fiber.Ctx) error {
	res, err := h.coord.VoidSale(c.Context(), c.Params("voucher"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return postingResponse(c, fiber.StatusCreated, res)
}

// Shrinkage godoc
// @Summary      Contabilizar merma al costo promedio
// @Tags         postings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShrinkageRequest  true  "comprobante, producto y cantidad"
// @Success      201   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/postings/shrinkages [post]
func (h *PostingHandler) Shrinkage(c *fiber.Ctx) error {
	var in dto.ShrinkageRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.coord.PostShrinkage(c.Context(), posting.ShrinkageInput{DocumentInput: document(c, in.DocumentHeader), ProductID: in.ProductID, Quantity: in.Quantity})
	if err != nil {
		return writeError(c, err)
	}
	return postingResponse(c, fiber.StatusCreated, res)
}

// Adjustment godoc
// @Summary      Contabilizar ajuste por conteo físico
// @Tags         postings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "comprobante, producto, dirección y cantidad"
// @Success      201   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/postings/adjustments [post]
func (h *PostingHandler) Adjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.coord.PostAdjustment(c.Context(), posting.AdjustmentInput{
		DocumentInput: document(c, in.DocumentHeader),
		ProductID:     in.ProductID,
		Direction:     entity.Direction(in.Direction),
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
	})
	if err != nil {
		return writeError(c, err)
	}
	return postingResponse(c, fiber.StatusCreated, res)
}
