// Package accounting contiene las reglas puras de partida doble.
package accounting

import (
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/money"
	"github.com/shopspring/decimal"
)

// Longitud permitida del código de cuenta (PUC: clase 1 dígito hasta auxiliar 10).
const (
	MinAccountCodeLength = 1
	MaxAccountCodeLength = 10
)

// BalanceResult totales de un conjunto de líneas.
type BalanceResult struct {
	Balanced     bool            `json:"balanced"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Difference   decimal.Decimal `json:"difference"`
}

// ValidateBalance suma débitos y créditos y compara contra money.BalanceTolerance.
// No valida montos ni cuentas: es el chequeo previo que puede usar una UI.
func ValidateBalance(lines []entity.JournalLine) BalanceResult {
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range lines {
		switch l.Side {
		case entity.SideDebit:
			debits = debits.Add(l.Amount)
		case entity.SideCredit:
			credits = credits.Add(l.Amount)
		}
	}
	return BalanceResult{
		Balanced:     money.WithinTolerance(debits, credits),
		TotalDebits:  debits,
		TotalCredits: credits,
		Difference:   debits.Sub(credits).Abs(),
	}
}

// ValidateLines aplica las validaciones estructurales que no requieren almacenamiento.
func ValidateLines(lines []entity.JournalLine) error {
	if len(lines) < 2 {
		return domain.ErrTooFewLines
	}
	for _, l := range lines {
		if l.Side != entity.SideDebit && l.Side != entity.SideCredit {
			return domain.ErrInvalidSide
		}
		if !l.Amount.IsPositive() {
			return domain.ErrInvalidAmount
		}
		if !money.FitsScale(l.Amount) {
			return domain.ErrInvalidAmountScale
		}
	}
	return nil
}

// ValidateAccountCode exige solo dígitos y longitud dentro de los límites.
func ValidateAccountCode(code string) error {
	if len(code) < MinAccountCodeLength || len(code) > MaxAccountCodeLength {
		return domain.ErrInvalidAccountCode
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return domain.ErrInvalidAccountCode
		}
	}
	return nil
}
