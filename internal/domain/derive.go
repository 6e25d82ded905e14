package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProgressPercent returns raised/cap*100. The result is intentionally not
// clamped at 100 so that an over-subscribed sale is visibly flagged instead
// of silently hidden.
func ProgressPercent(s PresaleSnapshot) decimal.Decimal {
	if s.HardCap.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return s.TotalRaised.Div(s.HardCap).Mul(hundred)
}

// RemainingToCap returns how much can still be contributed before the hard
// cap is reached, clamped at zero. Clamping here differs from
// ProgressPercent on purpose: a negative "remaining" is meaningless for
// display, an over-100 progress is not.
func RemainingToCap(s PresaleSnapshot) decimal.Decimal {
	remaining := s.HardCap.Sub(s.TotalRaised)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// TokensForAmount returns the token yield for a contribution amount at the
// given sale price. Non-positive price yields zero rather than a division
// error so display paths never crash on partial configuration.
func TokensForAmount(amount, tokenPrice decimal.Decimal) decimal.Decimal {
	if tokenPrice.LessThanOrEqual(decimal.Zero) || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return amount.Div(tokenPrice)
}

// TokensForInput is TokensForAmount over a raw user-entered string. Empty or
// unparsable input is treated as zero so the yield preview never errors on
// partial input.
func TokensForInput(raw string, tokenPrice decimal.Decimal) decimal.Decimal {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return TokensForAmount(amount, tokenPrice)
}

// ProfitAtLaunch returns tokens*(launchPrice-tokenPrice). The result may be
// negative when the launch price sits below the sale price; a loss is
// surfaced, not clamped away.
func ProfitAtLaunch(tokens, tokenPrice, launchPrice decimal.Decimal) decimal.Decimal {
	return tokens.Mul(launchPrice.Sub(tokenPrice))
}

// FormatTimeRemaining renders a countdown as whole days and whole remaining
// hours, truncating. Negative durations are treated as zero.
func FormatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int64(d / (24 * time.Hour))
	hours := int64(d % (24 * time.Hour) / time.Hour)
	return fmt.Sprintf("%dd %dh", days, hours)
}
