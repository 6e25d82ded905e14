package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestContributionWindowPartition(t *testing.T) {
	cases := []struct {
		name     string
		active   bool
		final    bool
		left     time.Duration
		canGive  bool
	}{
		{"open sale", true, false, time.Hour, true},
		{"inactive", false, false, time.Hour, false},
		{"finalized", true, true, time.Hour, false},
		{"expired", true, false, 0, false},
		{"expired negative", true, false, -time.Minute, false},
		{"finalized and expired", true, true, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := PresaleSnapshot{Active: c.active, Finalized: c.final, TimeRemaining: c.left}
			require.Equal(t, c.canGive, CanContribute(s))
			require.Equal(t, !c.canGive, HasEnded(s), "every sale is either open or ended, never both")
		})
	}
}

func TestCanClaim(t *testing.T) {
	position := UserPosition{
		Contribution:    decimal.NewFromInt(100),
		TokenAllocation: decimal.NewFromInt(2000),
	}

	require.False(t, CanClaim(PresaleSnapshot{Finalized: false}, position))
	require.True(t, CanClaim(PresaleSnapshot{Finalized: true}, position))

	position.HasClaimed = true
	require.False(t, CanClaim(PresaleSnapshot{Finalized: true}, position))
}

func TestCanClaimZeroContribution(t *testing.T) {
	// a zero position is still allowed through; the contract is the
	// authority on whether there is anything to pay out.
	require.True(t, CanClaim(PresaleSnapshot{Finalized: true}, UserPosition{}))
}
