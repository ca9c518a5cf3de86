package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/rs/zerolog/log"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Los errores específicos van antes que su categoría.
var errorMappings = []errorMapping{
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrUnbalancedEntry, fiber.StatusUnprocessableEntity, "UNBALANCED_ENTRY"},
	{domain.ErrInactiveAccount, fiber.StatusUnprocessableEntity, "INACTIVE_ACCOUNT"},
	{domain.ErrInactiveProduct, fiber.StatusUnprocessableEntity, "INACTIVE_PRODUCT"},
	{domain.ErrCyclicAccountHierarchy, fiber.StatusUnprocessableEntity, "CYCLIC_HIERARCHY"},
	{domain.ErrZeroCost, fiber.StatusUnprocessableEntity, "ZERO_COST"},
	{domain.ErrInactiveParentAccount, fiber.StatusUnprocessableEntity, "INACTIVE_PARENT_ACCOUNT"},
	{domain.ErrDocumentEntry, fiber.StatusConflict, "DOCUMENT_ENTRY"},
	{domain.ErrReservedReference, fiber.StatusConflict, "RESERVED_REFERENCE"},
	{domain.ErrAccountHasDependents, fiber.StatusConflict, "ACCOUNT_HAS_DEPENDENTS"},
	{domain.ErrEntryHasDependents, fiber.StatusConflict, "ENTRY_HAS_DEPENDENTS"},
	{domain.ErrAlreadyVoided, fiber.StatusConflict, "ALREADY_VOIDED"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrDuplicateVoucher, fiber.StatusConflict, "DUPLICATE_VOUCHER"},
	{domain.ErrDuplicateAccountCode, fiber.StatusConflict, "DUPLICATE_ACCOUNT_CODE"},
	{domain.ErrDuplicateSKU, fiber.StatusConflict, "DUPLICATE_SKU"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrAccountNotFound, fiber.StatusNotFound, "ACCOUNT_NOT_FOUND"},
	{domain.ErrEntryNotFound, fiber.StatusNotFound, "ENTRY_NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrBusinessRule, fiber.StatusUnprocessableEntity, "BUSINESS_RULE"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// writeError responde con el status y código que corresponden al error de dominio.
// Lo que no es de dominio se registra y se responde como 500 sin detalle.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
