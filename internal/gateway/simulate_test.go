package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testSimConfig() SimulateConfig {
	return SimulateConfig{
		HardCap:         decimal.NewFromInt(500000),
		TokenPrice:      decimal.RequireFromString("0.05"),
		MinContribution: decimal.NewFromInt(50),
		MaxContribution: decimal.NewFromInt(5000),
		Duration:        time.Hour,
		Identity:        "alice",
	}
}

func TestNewSimulateGatewayValidation(t *testing.T) {
	cfg := testSimConfig()
	cfg.TokenPrice = decimal.Zero
	_, err := NewSimulateGateway(cfg, nil)
	require.Error(t, err)

	cfg = testSimConfig()
	cfg.MinContribution = decimal.NewFromInt(6000)
	_, err = NewSimulateGateway(cfg, nil)
	require.Error(t, err)
}

func TestSimulateContributeAndClaim(t *testing.T) {
	g, err := NewSimulateGateway(testSimConfig(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := g.VerifyNetwork(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	txID, err := g.Contribute(ctx, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.True(t, len(txID) > 2 && txID[:2] == "0x")

	snap, err := g.SaleInfo(ctx)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(100).Equal(snap.TotalRaised))
	require.EqualValues(t, 1, snap.ParticipantCount)
	require.True(t, snap.Active)

	position, err := g.UserInfo(ctx, "alice")
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(100).Equal(position.Contribution))
	require.True(t, decimal.NewFromInt(2000).Equal(position.TokenAllocation))

	// claims are rejected until the sale settles.
	_, err = g.ClaimTokens(ctx)
	require.Error(t, err)

	g.Finalize()

	snap, err = g.SaleInfo(ctx)
	require.NoError(t, err)
	require.True(t, snap.Finalized)
	require.False(t, snap.Active)
	require.Zero(t, snap.TimeRemaining)

	_, err = g.ClaimTokens(ctx)
	require.NoError(t, err)

	position, err = g.UserInfo(ctx, "alice")
	require.NoError(t, err)
	require.True(t, position.HasClaimed)

	_, err = g.ClaimTokens(ctx)
	require.ErrorContains(t, err, "already claimed")
}

func TestSimulateContributeBounds(t *testing.T) {
	g, err := NewSimulateGateway(testSimConfig(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = g.Contribute(ctx, decimal.NewFromInt(10))
	require.ErrorContains(t, err, "outside bounds")

	_, err = g.Contribute(ctx, decimal.NewFromInt(10000))
	require.ErrorContains(t, err, "outside bounds")

	g.Finalize()
	_, err = g.Contribute(ctx, decimal.NewFromInt(100))
	require.ErrorContains(t, err, "sale is closed")
}

func TestSimulateClaimWithoutContribution(t *testing.T) {
	g, err := NewSimulateGateway(testSimConfig(), nil)
	require.NoError(t, err)

	g.Finalize()
	_, err = g.ClaimTokens(context.Background())
	require.ErrorContains(t, err, "nothing to claim")
}
