package gateway

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestWeiConversion(t *testing.T) {
	oneEther := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	require.True(t, decimal.NewFromInt(1).Equal(weiToDecimal(oneEther)))

	half := decimal.RequireFromString("0.5")
	require.Equal(t, "500000000000000000", decimalToWei(half).String())

	// round trip preserves 18-decimal precision
	v := decimal.RequireFromString("123.456789012345678901")
	back := weiToDecimal(decimalToWei(v))
	require.Equal(t, "123.456789012345678", back.String())

	require.True(t, weiToDecimal(big.NewInt(0)).IsZero())
}
