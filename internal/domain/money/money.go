// Package money concentra las constantes y helpers de precisión monetaria
// compartidos por el motor de costeo y el motor contable.
package money

import "github.com/shopspring/decimal"

// CurrencyScale es la cantidad de decimales de la moneda (COP con centavos).
const CurrencyScale int32 = 2

// BalanceTolerance es la diferencia máxima aceptada entre débitos y créditos (0.01).
var BalanceTolerance = decimal.New(1, -CurrencyScale)

// Round redondea a CurrencyScale decimales, mitad hacia arriba.
// Para valores no negativos decimal.Round (mitad alejándose de cero) equivale a half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyScale)
}

// Extend devuelve cantidad × precio redondeado a la escala de la moneda.
func Extend(quantity int64, price decimal.Decimal) decimal.Decimal {
	return Round(decimal.NewFromInt(quantity).Mul(price))
}

// WithinTolerance indica si |a - b| <= BalanceTolerance (límite inclusivo).
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(BalanceTolerance)
}

// FitsScale indica si d no tiene más decimales que la moneda.
// Los montos y precios de entrada se rechazan si no cumplen; no se redondean en silencio.
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(CurrencyScale))
}
