package service

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	// maxMoney верхняя граница NUMERIC(14, 2)
	maxMoney = decimal.RequireFromString("999999999999.99")
)

// LineTotal = unitPrice * quantity * (1 - discountPercent/100), 2 знака, half away from zero
func LineTotal(unitPrice decimal.Decimal, quantity int64, discountPercent decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(quantity))
	factor := hundred.Sub(discountPercent).Div(hundred)
	return gross.Mul(factor).Round(2)
}

func hasAtMostTwoDecimals(v decimal.Decimal) bool {
	return v.Equal(v.Round(2))
}

// checkMoney сумма в пределах NUMERIC(14, 2): 0 ≤ v ≤ maxMoney, не больше 2 знаков после точки
func checkMoney(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return invalid(field, "must not be negative")
	}
	if v.GreaterThan(maxMoney) {
		return invalid(field, "must not exceed %s", maxMoney.String())
	}
	if !hasAtMostTwoDecimals(v) {
		return invalid(field, "must have at most 2 decimal places")
	}
	return nil
}

// checkDiscount скидка в процентах: 0..min(max, 100), не больше 2 знаков после точки
func checkDiscount(v, max decimal.Decimal) error {
	if max.GreaterThan(hundred) {
		max = hundred
	}
	if v.IsNegative() || v.GreaterThan(max) {
		return invalid("discount_percent", "must be between 0 and %s", max.String())
	}
	if !hasAtMostTwoDecimals(v) {
		return invalid("discount_percent", "must have at most 2 decimal places")
	}
	return nil
}
