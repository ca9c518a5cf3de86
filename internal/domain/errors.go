package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Categorías de error. Todo error de dominio envuelve una de ellas para que
// la capa HTTP pueda mapear el status con errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrBusinessRule = errors.New("regla de negocio violada")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Validación: se rechazan antes de tocar cualquier estado.
var (
	ErrInvalidQuantity     = fmt.Errorf("%w: la cantidad debe ser mayor que cero", ErrInvalidInput)
	ErrInvalidUnitPrice    = fmt.Errorf("%w: el precio unitario debe ser mayor que cero", ErrInvalidInput)
	ErrInvalidMovementKind = fmt.Errorf("%w: tipo de movimiento desconocido", ErrInvalidInput)
	ErrInvalidDirection    = fmt.Errorf("%w: el ajuste requiere dirección INCREASE o DECREASE", ErrInvalidInput)
	ErrInvalidAmount       = fmt.Errorf("%w: el valor de cada línea debe ser mayor que cero", ErrInvalidInput)
	ErrInvalidSide         = fmt.Errorf("%w: la naturaleza de la línea debe ser DEBIT o CREDIT", ErrInvalidInput)
	ErrTooFewLines         = fmt.Errorf("%w: el asiento requiere al menos dos líneas", ErrInvalidInput)
	ErrInvalidAccountCode  = fmt.Errorf("%w: el código de cuenta debe tener entre 1 y 10 dígitos", ErrInvalidInput)
	ErrInvalidAccountType  = fmt.Errorf("%w: tipo de cuenta desconocido", ErrInvalidInput)
	ErrInvalidPriceScale   = fmt.Errorf("%w: el precio unitario admite máximo 2 decimales", ErrInvalidInput)
	ErrInvalidAmountScale  = fmt.Errorf("%w: el valor de la línea admite máximo 2 decimales", ErrInvalidInput)
)

// No encontrados.
var (
	ErrProductNotFound = fmt.Errorf("producto: %w", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("cuenta: %w", ErrNotFound)
	ErrEntryNotFound   = fmt.Errorf("asiento: %w", ErrNotFound)
)

// Reglas de negocio: se rechazan sin mutación parcial.
var (
	ErrInsufficientStock      = fmt.Errorf("%w: stock insuficiente", ErrBusinessRule)
	ErrUnbalancedEntry        = fmt.Errorf("%w: el asiento no cuadra", ErrBusinessRule)
	ErrInactiveAccount        = fmt.Errorf("%w: cuenta inactiva", ErrBusinessRule)
	ErrInactiveProduct        = fmt.Errorf("%w: producto inactivo", ErrBusinessRule)
	ErrCyclicAccountHierarchy = fmt.Errorf("%w: la jerarquía de cuentas formaría un ciclo", ErrBusinessRule)
	ErrAccountHasDependents   = fmt.Errorf("%w: la cuenta tiene subcuentas activas o movimientos contables", ErrBusinessRule)
	ErrEntryHasDependents     = fmt.Errorf("%w: el asiento fue generado por un documento o ya fue reversado; use un asiento de reversión", ErrBusinessRule)
	ErrInvalidTransition      = fmt.Errorf("%w: transición de estado inválida", ErrBusinessRule)
	ErrAlreadyVoided          = fmt.Errorf("%w: el documento ya fue anulado", ErrBusinessRule)
	ErrZeroCost               = fmt.Errorf("%w: el producto no tiene costo promedio para valorizar la merma", ErrBusinessRule)
	ErrInactiveParentAccount  = fmt.Errorf("%w: la cuenta padre está inactiva", ErrBusinessRule)
	ErrDocumentEntry          = fmt.Errorf("%w: el asiento pertenece a un documento; anúlelo desde el documento", ErrBusinessRule)
	ErrReservedReference      = fmt.Errorf("%w: la referencia corresponde a un comprobante contabilizado", ErrConflict)
)

// Duplicados (constraint único en almacenamiento).
var (
	ErrDuplicateVoucher     = fmt.Errorf("%w: el comprobante ya existe", ErrDuplicate)
	ErrDuplicateAccountCode = fmt.Errorf("%w: el código de cuenta ya existe", ErrDuplicate)
	ErrDuplicateSKU         = fmt.Errorf("%w: el SKU ya existe", ErrDuplicate)
)

// InsufficientStockError la salida dejaría el stock en negativo.
type InsufficientStockError struct {
	ProductID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// UnbalancedEntryError reporta ambos totales del asiento rechazado.
type UnbalancedEntryError struct {
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("asiento descuadrado: débitos %s, créditos %s",
		e.TotalDebits.StringFixed(2), e.TotalCredits.StringFixed(2))
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrUnbalancedEntry }

// InactiveAccountError nombra la cuenta inactiva referenciada por una línea.
type InactiveAccountError struct {
	Code string
}

func (e *InactiveAccountError) Error() string {
	return fmt.Sprintf("la cuenta %s está inactiva", e.Code)
}

func (e *InactiveAccountError) Unwrap() error { return ErrInactiveAccount }

// AccountNotFoundError nombra la referencia (código o id) que no existe.
type AccountNotFoundError struct {
	Ref string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("la cuenta %s no existe", e.Ref)
}

func (e *AccountNotFoundError) Unwrap() error { return ErrAccountNotFound }
