package postgres

import (
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

// psql builder con placeholders $n.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Nombres de los constraints únicos declarados en las migraciones.
const (
	constraintProductSKU   = "products_sku_key"
	constraintAccountCode  = "accounts_code_key"
	constraintEntryVoucher = "journal_entries_voucher_key"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isCheckViolation detecta la violación de un CHECK (23514), p. ej. stock >= 0.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// mapUniqueViolation traduce el constraint violado al error de dominio.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return domain.ErrDuplicate
	}
	switch pgErr.ConstraintName {
	case constraintProductSKU:
		return domain.ErrDuplicateSKU
	case constraintAccountCode:
		return domain.ErrDuplicateAccountCode
	case constraintEntryVoucher:
		return domain.ErrDuplicateVoucher
	}
	return domain.ErrDuplicate
}
