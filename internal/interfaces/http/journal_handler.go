package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/accounting"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// JournalHandler maneja el libro diario (protegido).
type JournalHandler struct {
	engine *accounting.JournalEngine
}

// NewJournalHandler construye el handler.
func NewJournalHandler(engine *accounting.JournalEngine) *JournalHandler {
	return &JournalHandler{engine: engine}
}

func toLineInputs(in []dto.JournalLineRequest) []accounting.LineInput {
	out := make([]accounting.LineInput, len(in))
	for i, l := range in {
		out[i] = accounting.LineInput{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Side:        entity.Side(l.Side),
			Amount:      l.Amount,
			Memo:        l.Memo,
		}
	}
	return out
}

// CreateEntry godoc
// @Summary      Registrar asiento manual
// @Tags         journal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEntryRequest  true  "descripción, comprobante y líneas"
// @Success      201   {object}  dto.JournalEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/journal/entries [post]
func (h *JournalHandler) CreateEntry(c *fiber.Ctx) error {
	var in dto.CreateEntryRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	input := accounting.EntryInput{
		Description: in.Description,
		Voucher:     in.Voucher,
		Source:      entity.SourceManual,
		Actor:       GetUserID(c),
		Lines:       toLineInputs(in.Lines),
	}
	if in.Date != nil {
		input.Date = *in.Date
	}
	entry, err := h.engine.CreateEntry(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewJournalEntryResponse(entry))
}

// ValidateBalance godoc
// @Summary      Calcular cuadre sin registrar
// @Tags         journal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateBalanceRequest  true  "líneas"
// @Success      200   {object}  accounting.BalanceResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/journal/validate [post]
func (h *JournalHandler) ValidateBalance(c *fiber.Ctx) error {
	var in dto.ValidateBalanceRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	return c.JSON(h.engine.ValidateBalance(toLineInputs(in.Lines)))
}

// GetEntry godoc
// @Summary      Obtener asiento
// @Tags         journal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del asiento"
// @Success      200  {object}  dto.JournalEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/journal/entries/{id} [get]
func (h *JournalHandler) GetEntry(c *fiber.Ctx) error {
	entry, err := h.engine.GetEntry(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewJournalEntryResponse(entry))
}

// ListEntries godoc
// @Summary      Listar asientos (más recientes primero)
// @Tags         journal
// @Security     Bearer
// @Produce      json
// @Param        from        query  string  false  "Desde (RFC3339)"
// @Param        to          query  string  false  "Hasta (RFC3339)"
// @Param        account_id  query  string  false  "Cuenta"
// @Param        voucher     query  string  false  "Comprobante"
// @Param        source      query  string  false  "Origen"
// @Param        limit       query  int     false  "Límite"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {array}   dto.JournalEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/journal/entries [get]
func (h *JournalHandler) ListEntries(c *fiber.Ctx) error {
	var q dto.EntryFilterRequest
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	list, err := h.engine.ListEntries(c.Context(), repository.EntryFilter{
		From:      parseTime(q.From),
		To:        parseTime(q.To),
		AccountID: q.AccountID,
		Voucher:   q.Voucher,
		Source:    entity.EntrySource(q.Source),
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewJournalEntryList(list))
}

// DeleteEntry godoc
// @Summary      Eliminar asiento manual no reversado
// @Tags         journal
// @Security     Bearer
// @Param        id   path  string  true  "ID del asiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/journal/entries/{id} [delete]
func (h *JournalHandler) DeleteEntry(c *fiber.Ctx) error {
	if err := h.engine.DeleteEntry(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReverseEntry godoc
// @Summary      Reversar asiento
// @Tags         journal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del asiento"
// @Success      201  {object}  dto.JournalEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/journal/entries/{id}/reverse [post]
func (h *JournalHandler) ReverseEntry(c *fiber.Ctx) error {
	rev, err := h.engine.ReverseEntry(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewJournalEntryResponse(rev))
}
