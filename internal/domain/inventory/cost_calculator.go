package inventory

import (
	"github.com/jhoicas/backoffice-api/internal/domain/money"
	"github.com/shopspring/decimal"
)

// CostCalculator implementa el costo promedio ponderado (BR-11).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * PrecioEntrada)) / (StockActual + CantEntrada)
// Sin stock previo el nuevo costo es el precio de entrada. El redondeo se aplica
// una sola vez sobre el resultado, nunca sobre los productos intermedios.
func CostCalculator(stockActual int64, costoActual decimal.Decimal, cantEntrada int64, precioEntrada decimal.Decimal) decimal.Decimal {
	if stockActual <= 0 {
		return money.Round(precioEntrada)
	}
	sum := stockActual + cantEntrada
	if sum <= 0 {
		return money.Round(costoActual)
	}
	num := decimal.NewFromInt(stockActual).Mul(costoActual).
		Add(decimal.NewFromInt(cantEntrada).Mul(precioEntrada))
	return money.Round(num.Div(decimal.NewFromInt(sum)))
}
