package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPayment(t *testing.T) {
	total := decimal.NewFromInt(250)

	newPaid, err := ApplyPayment(decimal.Zero, total, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, newPaid.Equal(decimal.NewFromInt(100)))

	newPaid, err = ApplyPayment(newPaid, total, decimal.NewFromInt(150))
	require.NoError(t, err)
	assert.True(t, newPaid.Equal(total))

	_, err = ApplyPayment(decimal.NewFromInt(200), total, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrOverpayment)

	_, err = ApplyPayment(decimal.Zero, total, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ApplyPayment(decimal.Zero, total, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDeriveReceivableStatus(t *testing.T) {
	amount := decimal.NewFromInt(100)

	assert.Equal(t, ReceivablePending, DeriveReceivableStatus(decimal.Zero, amount))
	assert.Equal(t, ReceivablePartial, DeriveReceivableStatus(decimal.NewFromInt(40), amount))
	assert.Equal(t, ReceivablePaid, DeriveReceivableStatus(amount, amount))
}

func TestParseCategory(t *testing.T) {
	got, ok := ParseCategory("coins")
	require.True(t, ok)
	assert.Equal(t, CategoryCoin, got)

	got, ok = ParseCategory("general-goods")
	require.True(t, ok)
	assert.Equal(t, CategoryGeneralGoods, got)

	_, ok = ParseCategory("furniture")
	assert.False(t, ok)
}
