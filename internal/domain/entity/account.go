package entity

import (
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
)

// AccountType naturaleza contable de la cuenta.
type AccountType string

const (
	AccountAsset     AccountType = "ASSET"
	AccountLiability AccountType = "LIABILITY"
	AccountEquity    AccountType = "EQUITY"
	AccountIncome    AccountType = "INCOME"
	AccountExpense   AccountType = "EXPENSE"
)

// Valid indica si el tipo es conocido.
func (t AccountType) Valid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountIncome, AccountExpense:
		return true
	}
	return false
}

// Account cuenta del plan de cuentas (PUC). ParentID forma un árbol sin ciclos.
type Account struct {
	ID        string
	Code      string
	Name      string
	Type      AccountType
	ParentID  *string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si la cuenta admite líneas contables.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// Deactivate aplica la transición ACTIVE -> DEACTIVATED con sus precondiciones:
// sin subcuentas activas y sin líneas contables que la referencien.
func (a *Account) Deactivate(hasActiveChildren, hasLines bool, now time.Time) error {
	if a.Status != StatusActive {
		return domain.ErrInvalidTransition
	}
	if hasActiveChildren || hasLines {
		return domain.ErrAccountHasDependents
	}
	a.Status = StatusDeactivated
	a.UpdatedAt = now
	return nil
}

// Activate aplica DEACTIVATED -> ACTIVE.
func (a *Account) Activate(now time.Time) error {
	if a.Status != StatusDeactivated {
		return domain.ErrInvalidTransition
	}
	a.Status = StatusActive
	a.UpdatedAt = now
	return nil
}
