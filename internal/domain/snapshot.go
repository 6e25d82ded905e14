// Package domain defines core data structures used throughout the presale service.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PresaleSnapshot is a point-in-time read of aggregate sale state from the
// contract. It is replaced wholesale on every successful fetch and never
// partially mutated.
type PresaleSnapshot struct {
	// TotalRaised cumulative amount contributed by all participants, in sale currency.
	TotalRaised decimal.Decimal `json:"total_raised"`
	// HardCap maximum aggregate amount the sale accepts.
	HardCap decimal.Decimal `json:"hard_cap"`
	// ParticipantCount number of distinct contributing identities.
	ParticipantCount int64 `json:"participant_count"`
	// TimeRemaining duration until sale close, zero once closed.
	TimeRemaining time.Duration `json:"time_remaining"`
	// TokenPrice price per token in sale currency.
	TokenPrice decimal.Decimal `json:"token_price"`
	// MinContribution lower bound for a single contribution.
	MinContribution decimal.Decimal `json:"min_contribution"`
	// MaxContribution upper bound for a single contribution.
	MaxContribution decimal.Decimal `json:"max_contribution"`
	// Active sale currently open per contract.
	Active bool `json:"active"`
	// Finalized sale permanently closed with allocations settled.
	Finalized bool `json:"finalized"`
}

// Validate checks structural sanity of a fetched snapshot. TotalRaised above
// HardCap is allowed: the contract is authoritative and an over-subscribed
// sale must be displayed, not rejected.
func (s *PresaleSnapshot) Validate() error {
	if s.HardCap.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("hard cap must be positive, got %s", s.HardCap.String())
	}
	if s.TokenPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("token price must be positive, got %s", s.TokenPrice.String())
	}
	if s.TotalRaised.IsNegative() {
		return fmt.Errorf("total raised cannot be negative, got %s", s.TotalRaised.String())
	}
	if s.MinContribution.LessThanOrEqual(decimal.Zero) || s.MaxContribution.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("contribution bounds must be positive, got min=%s max=%s",
			s.MinContribution.String(), s.MaxContribution.String())
	}
	if s.MinContribution.GreaterThan(s.MaxContribution) {
		return fmt.Errorf("min contribution %s exceeds max contribution %s",
			s.MinContribution.String(), s.MaxContribution.String())
	}
	if s.ParticipantCount < 0 {
		return fmt.Errorf("participant count cannot be negative, got %d", s.ParticipantCount)
	}
	return nil
}

// UserPosition is a point-in-time read of one identity's participation state.
// The zero value means the identity has not contributed.
type UserPosition struct {
	// Contribution cumulative amount contributed by this identity.
	Contribution decimal.Decimal `json:"contribution"`
	// TokenAllocation tokens owed to this identity.
	TokenAllocation decimal.Decimal `json:"token_allocation"`
	// HasClaimed one-way latch, never reverts to false once set.
	HasClaimed bool `json:"has_claimed"`
}
