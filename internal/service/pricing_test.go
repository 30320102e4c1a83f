package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		qty      int64
		discount string
		want     string
	}{
		{name: "no discount", price: "10.00", qty: 3, discount: "0", want: "30.00"},
		{name: "ten percent", price: "99.90", qty: 2, discount: "10", want: "179.82"},
		{name: "full discount", price: "15.50", qty: 4, discount: "100", want: "0.00"},
		{name: "rounds half away from zero", price: "0.05", qty: 1, discount: "50", want: "0.03"},
		{name: "fractional discount", price: "19.99", qty: 7, discount: "12.5", want: "122.44"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(decimal.RequireFromString(tt.price), tt.qty, decimal.RequireFromString(tt.discount))
			require.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestPage_Normalize(t *testing.T) {
	require.Equal(t, Page{Number: 1, Size: DefaultPageSize}, Page{}.Normalize())
	require.Equal(t, Page{Number: 3, Size: MaxPageSize}, Page{Number: 3, Size: 1000}.Normalize())

	p := Page{Number: 3, Size: 10}.Normalize()
	require.Equal(t, 20, p.Offset())
	require.Equal(t, int64(3), p.TotalPages(21))
	require.Equal(t, int64(0), p.TotalPages(0))
}

func TestCheckMoneyAndDiscount(t *testing.T) {
	require.NoError(t, checkMoney("price", decimal.RequireFromString("999999999999.99")))
	require.NoError(t, checkMoney("price", decimal.RequireFromString("10.50")))
	require.ErrorIs(t, checkMoney("price", decimal.RequireFromString("10.505")), ErrValidation)
	require.ErrorIs(t, checkMoney("price", decimal.RequireFromString("1000000000000")), ErrValidation)
	require.ErrorIs(t, checkMoney("price", decimal.RequireFromString("-0.01")), ErrValidation)

	require.NoError(t, checkDiscount(decimal.RequireFromString("12.5"), hundred))
	require.ErrorIs(t, checkDiscount(decimal.RequireFromString("12.345"), hundred), ErrValidation)
	require.ErrorIs(t, checkDiscount(decimal.RequireFromString("101"), decimal.NewFromInt(999)), ErrValidation)
}
