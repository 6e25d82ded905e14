package gateway

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/presale/internal/domain"
	"go.uber.org/zap"
)

// SimulateGateway is an in-memory presale: contributions mutate local state
// and produce synthetic transaction ids. It implements the same contract as
// the Ethereum gateway and is used for local runs and tests.
type SimulateGateway struct {
	mu     sync.RWMutex
	logger *zap.Logger

	hardCap         decimal.Decimal
	tokenPrice      decimal.Decimal
	minContribution decimal.Decimal
	maxContribution decimal.Decimal

	totalRaised  decimal.Decimal
	participants map[string]domain.UserPosition
	endTime      time.Time
	active       bool
	finalized    bool

	// identity attributed to contributions made through this gateway.
	identity string
}

// SimulateConfig parameterizes the in-memory sale.
type SimulateConfig struct {
	HardCap         decimal.Decimal
	TokenPrice      decimal.Decimal
	MinContribution decimal.Decimal
	MaxContribution decimal.Decimal
	Duration        time.Duration
	Identity        string
}

// NewSimulateGateway creates a simulated sale that opens immediately and
// closes after cfg.Duration.
func NewSimulateGateway(cfg SimulateConfig, logger *zap.Logger) (*SimulateGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TokenPrice.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("token price must be positive, got %s", cfg.TokenPrice.String())
	}
	if cfg.HardCap.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("hard cap must be positive, got %s", cfg.HardCap.String())
	}
	if cfg.MinContribution.LessThanOrEqual(decimal.Zero) || cfg.MinContribution.GreaterThan(cfg.MaxContribution) {
		return nil, errors.Errorf("invalid contribution bounds min=%s max=%s",
			cfg.MinContribution.String(), cfg.MaxContribution.String())
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 72 * time.Hour
	}
	identity := cfg.Identity
	if identity == "" {
		identity = "simulated-account"
	}

	g := &SimulateGateway{
		logger:          logger,
		hardCap:         cfg.HardCap,
		tokenPrice:      cfg.TokenPrice,
		minContribution: cfg.MinContribution,
		maxContribution: cfg.MaxContribution,
		totalRaised:     decimal.Zero,
		participants:    make(map[string]domain.UserPosition),
		endTime:         time.Now().Add(cfg.Duration),
		active:          true,
		identity:        identity,
	}
	logger.Info("simulated sale opened",
		zap.String("hard_cap", cfg.HardCap.String()),
		zap.String("token_price", cfg.TokenPrice.String()),
		zap.Duration("duration", cfg.Duration))
	return g, nil
}

// VerifyNetwork always succeeds: the simulator is its own chain.
func (g *SimulateGateway) VerifyNetwork(ctx context.Context) (bool, error) {
	return true, nil
}

// SaleInfo returns the current simulated sale state.
func (g *SimulateGateway) SaleInfo(ctx context.Context) (domain.PresaleSnapshot, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	remaining := time.Until(g.endTime)
	if remaining < 0 || g.finalized {
		remaining = 0
	}

	return domain.PresaleSnapshot{
		TotalRaised:      g.totalRaised,
		HardCap:          g.hardCap,
		ParticipantCount: int64(len(g.participants)),
		TimeRemaining:    remaining,
		TokenPrice:       g.tokenPrice,
		MinContribution:  g.minContribution,
		MaxContribution:  g.maxContribution,
		Active:           g.active && !g.finalized,
		Finalized:        g.finalized,
	}, nil
}

// UserInfo returns the position for identity; the zero position when the
// identity never contributed.
func (g *SimulateGateway) UserInfo(ctx context.Context, identity string) (domain.UserPosition, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.participants[identity], nil
}

// Contribute records a contribution for the configured identity and returns
// a synthetic transaction id.
func (g *SimulateGateway) Contribute(ctx context.Context, amount decimal.Decimal) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finalized || !g.active || time.Now().After(g.endTime) {
		return "", errors.New("sale is closed")
	}
	if amount.LessThan(g.minContribution) || amount.GreaterThan(g.maxContribution) {
		return "", errors.Errorf("amount %s outside bounds [%s, %s]",
			amount.String(), g.minContribution.String(), g.maxContribution.String())
	}

	position := g.participants[g.identity]
	position.Contribution = position.Contribution.Add(amount)
	position.TokenAllocation = position.TokenAllocation.Add(amount.Div(g.tokenPrice))
	g.participants[g.identity] = position
	g.totalRaised = g.totalRaised.Add(amount)

	txID := syntheticTxID()
	g.logger.Info("simulated contribution",
		zap.String("amount", amount.String()),
		zap.String("total_raised", g.totalRaised.String()),
		zap.String("tx", txID))
	return txID, nil
}

// ClaimTokens pays out the configured identity's allocation after
// finalization.
func (g *SimulateGateway) ClaimTokens(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.finalized {
		return "", errors.New("sale is not finalized")
	}
	position, ok := g.participants[g.identity]
	if !ok || position.Contribution.IsZero() {
		return "", errors.New("nothing to claim")
	}
	if position.HasClaimed {
		return "", errors.New("already claimed")
	}

	position.HasClaimed = true
	g.participants[g.identity] = position

	txID := syntheticTxID()
	g.logger.Info("simulated claim",
		zap.String("tokens", position.TokenAllocation.String()),
		zap.String("tx", txID))
	return txID, nil
}

// Finalize closes the sale and settles allocations. Finalization is one-way.
func (g *SimulateGateway) Finalize() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = false
	g.finalized = true
}

func syntheticTxID() string {
	return "0x" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
