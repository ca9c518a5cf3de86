package posting

import (
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/accounting"
)

// Accounts códigos del plan de cuentas que usa cada contabilización.
type Accounts struct {
	Cash        string
	Receivables string
	Inventory   string
	Payables    string
	VATPayable  string
	Revenue     string
	COGS        string
	Shrinkage   string
	Adjustments string
}

// DefaultAccounts cuentas del PUC colombiano para comercio.
func DefaultAccounts() Accounts {
	return Accounts{
		Cash:        "1105", // Caja
		Receivables: "1305", // Clientes
		Inventory:   "1435", // Mercancías no fabricadas por la empresa
		Payables:    "2205", // Proveedores nacionales
		VATPayable:  "2408", // IVA por pagar
		Revenue:     "4135", // Comercio al por mayor y al por menor
		COGS:        "6135", // Costo de ventas
		Shrinkage:   "5199", // Pérdidas por merma
		Adjustments: "4295", // Diversos
	}
}

// Validate exige que todos los códigos tengan formato de cuenta.
func (a Accounts) Validate() error {
	codes := map[string]string{
		"cash": a.Cash, "receivables": a.Receivables, "inventory": a.Inventory,
		"payables": a.Payables, "vat_payable": a.VATPayable, "revenue": a.Revenue,
		"cogs": a.COGS, "shrinkage": a.Shrinkage, "adjustments": a.Adjustments,
	}
	for name, code := range codes {
		if err := accounting.ValidateAccountCode(code); err != nil {
			return fmt.Errorf("%w: cuenta de contabilización %s=%q", domain.ErrInvalidAccountCode, name, code)
		}
	}
	return nil
}
