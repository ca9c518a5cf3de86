package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/accounting"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// AccountHandler maneja el plan de cuentas (protegido).
type AccountHandler struct {
	tree *accounting.AccountTree
}

// NewAccountHandler construye el handler.
func NewAccountHandler(tree *accounting.AccountTree) *AccountHandler {
	return &AccountHandler{tree: tree}
}

// Create godoc
// @Summary      Crear cuenta
// @Tags         accounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAccountRequest  true  "código PUC, nombre, tipo y padre opcional"
// @Success      201   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/accounts [post]
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAccountRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	a, err := h.tree.Create(c.Context(), accounting.AccountInput{
		Code:     in.Code,
		Name:     in.Name,
		Type:     entity.AccountType(in.Type),
		ParentID: in.ParentID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAccountResponse(a))
}

// Update godoc
// @Summary      Renombrar o mover una cuenta
// @Tags         accounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la cuenta"
// @Param        body  body  dto.UpdateAccountRequest  true  "nombre y/o padre"
// @Success      200   {object}  dto.AccountResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/accounts/{id} [put]
func (h *AccountHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateAccountRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	a, err := h.tree.Update(c.Context(), c.Params("id"), accounting.AccountUpdate{
		Name:         in.Name,
		ParentID:     in.ParentID,
		DetachParent: in.DetachParent,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAccountResponse(a))
}

// GetByID godoc
// @Summary      Obtener cuenta
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id} [get]
func (h *AccountHandler) GetByID(c *fiber.Ctx) error {
	a, err := h.tree.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAccountResponse(a))
}

// GetByCode godoc
// @Summary      Obtener cuenta por código PUC
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/code/{code} [get]
func (h *AccountHandler) GetByCode(c *fiber.Ctx) error {
	a, err := h.tree.GetByCode(c.Context(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAccountResponse(a))
}

// List godoc
// @Summary      Listar el plan de cuentas ordenado por código
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AccountResponse
// @Router       /api/accounts [get]
func (h *AccountHandler) List(c *fiber.Ctx) error {
	list, err := h.tree.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAccountList(list))
}

// Descendants godoc
// @Summary      Subárbol de una cuenta
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {array}   dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id}/descendants [get]
func (h *AccountHandler) Descendants(c *fiber.Ctx) error {
	list, err := h.tree.GetDescendants(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAccountList(list))
}

// Deactivate godoc
// @Summary      Desactivar cuenta
// @Description  Falla si tiene subcuentas activas o movimientos contables.
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id}/deactivate [post]
func (h *AccountHandler) Deactivate(c *fiber.Ctx) error {
	a, err := h.tree.Deactivate(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAccountResponse(a))
}

// Activate godoc
// @Summary      Reactivar cuenta
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id}/activate [post]
func (h *AccountHandler) Activate(c *fiber.Ctx) error {
	a, err := h.tree.Activate(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAccountResponse(a))
}
