package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProgressPercentUnbounded(t *testing.T) {
	s := PresaleSnapshot{
		TotalRaised: decimal.NewFromInt(150),
		HardCap:     decimal.NewFromInt(100),
	}
	require.True(t, decimal.NewFromInt(150).Equal(ProgressPercent(s)),
		"over-subscribed sale must show >100%%, got %s", ProgressPercent(s).String())

	s.TotalRaised = decimal.NewFromInt(25)
	require.True(t, decimal.NewFromInt(25).Equal(ProgressPercent(s)))
}

func TestProgressPercentZeroCap(t *testing.T) {
	s := PresaleSnapshot{TotalRaised: decimal.NewFromInt(10)}
	require.True(t, ProgressPercent(s).IsZero(), "zero cap must not panic or divide by zero")
}

func TestRemainingToCapClamped(t *testing.T) {
	s := PresaleSnapshot{
		TotalRaised: decimal.NewFromInt(150),
		HardCap:     decimal.NewFromInt(100),
	}
	require.True(t, RemainingToCap(s).IsZero(), "remaining is clamped at zero for over-cap sales")

	s.TotalRaised = decimal.NewFromInt(30)
	require.True(t, decimal.NewFromInt(70).Equal(RemainingToCap(s)))
}

func TestTokensForAmount(t *testing.T) {
	price := decimal.RequireFromString("0.05")

	require.True(t, TokensForAmount(decimal.Zero, price).IsZero())
	require.True(t, decimal.NewFromInt(2000).Equal(TokensForAmount(decimal.NewFromInt(100), price)))
	require.True(t, TokensForAmount(decimal.NewFromInt(100), decimal.Zero).IsZero(),
		"zero price yields zero tokens, never a division error")
}

func TestTokensForInputPartialInput(t *testing.T) {
	price := decimal.RequireFromString("0.05")

	require.True(t, TokensForInput("", price).IsZero())
	require.True(t, TokensForInput("abc", price).IsZero())
	require.True(t, TokensForInput("-5", price).IsZero())
	require.True(t, decimal.NewFromInt(1000).Equal(TokensForInput("50", price)))
}

func TestProfitAtLaunchMayBeNegative(t *testing.T) {
	tokens := decimal.NewFromInt(1000)
	salePrice := decimal.RequireFromString("0.05")

	profit := ProfitAtLaunch(tokens, salePrice, decimal.RequireFromString("0.08"))
	require.True(t, decimal.NewFromInt(30).Equal(profit))

	loss := ProfitAtLaunch(tokens, salePrice, decimal.RequireFromString("0.02"))
	require.True(t, decimal.NewFromInt(-30).Equal(loss), "a loss is surfaced, not clamped")
}

func TestFormatTimeRemaining(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{90_000_000 * time.Millisecond, "1d 1h"},
		{0, "0d 0h"},
		{-time.Hour, "0d 0h"},
		{23 * time.Hour, "0d 23h"},
		{49 * time.Hour, "2d 1h"},
		{24 * time.Hour, "1d 0h"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, FormatTimeRemaining(c.d), "for %s", c.d)
	}
}
