// Package controller implements the presale interaction controller: the
// single source of truth for sale snapshot, user position and action state,
// sequencing every side-effecting call to the contract gateway.
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/presale/internal/domain"
	"go.uber.org/zap"
)

const truncatedTxIDLen = 10

// ContractGateway performs network verification, snapshot retrieval and
// transaction submission against the chain. All operations may fail with
// opaque reason strings which the controller passes through.
type ContractGateway interface {
	VerifyNetwork(ctx context.Context) (bool, error)
	SaleInfo(ctx context.Context) (domain.PresaleSnapshot, error)
	UserInfo(ctx context.Context, identity string) (domain.UserPosition, error)
	Contribute(ctx context.Context, amount decimal.Decimal) (string, error)
	ClaimTokens(ctx context.Context) (string, error)
}

type journal interface {
	Prepare(action domain.SubmissionAction, amount decimal.Decimal) (*domain.Receipt, error)
	MarkDone(receipt *domain.Receipt, txID string) error
	MarkFailed(receipt *domain.Receipt, cause error) error
}

// ActionState is the transient activity state of the controller.
type ActionState string

const (
	// StateIdle no action in flight, triggers enabled.
	StateIdle ActionState = "idle"
	// StateLoading a refresh cycle is in flight.
	StateLoading ActionState = "loading"
	// StateSubmitting a contribute or claim transaction is in flight.
	StateSubmitting ActionState = "submitting"
)

// View is the read-only surface exposed to the presentation layer.
type View struct {
	Snapshot      domain.PresaleSnapshot `json:"snapshot"`
	Position      domain.UserPosition    `json:"position"`
	HasSnapshot   bool                   `json:"has_snapshot"`
	Identity      string                 `json:"identity,omitempty"`
	State         ActionState            `json:"state"`
	PendingAmount string                 `json:"pending_amount,omitempty"`
	LastError     string                 `json:"last_error,omitempty"`
	LastSuccess   string                 `json:"last_success,omitempty"`
}

// PresaleController orchestrates fetch, derive, validate, submit and refresh
// cycles over a contract gateway.
type PresaleController struct {
	mu              sync.RWMutex
	gateway         ContractGateway
	journal         journal
	logger          *zap.Logger
	expectedChainID int64

	snapshot    domain.PresaleSnapshot
	hasSnapshot bool
	position    domain.UserPosition
	identity    string
	pending     string

	state           ActionState
	lastError       string
	lastSuccess     string
	refreshInFlight bool
	closed          bool
}

// New creates a presale controller. The journal is optional: a nil store
// disables receipt journaling without disabling submissions.
func New(gateway ContractGateway, receipts journal, expectedChainID int64, logger *zap.Logger) (*PresaleController, error) {
	if gateway == nil {
		return nil, errors.New("contract gateway is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresaleController{
		gateway:         gateway,
		journal:         receipts,
		logger:          logger,
		expectedChainID: expectedChainID,
		state:           StateIdle,
	}, nil
}

// View returns a copy of the current controller state.
func (c *PresaleController) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View{
		Snapshot:      c.snapshot,
		Position:      c.position,
		HasSnapshot:   c.hasSnapshot,
		Identity:      c.identity,
		State:         c.state,
		PendingAmount: c.pending,
		LastError:     c.lastError,
		LastSuccess:   c.lastSuccess,
	}
}

// Close marks the interaction surface as closed. In-flight gateway calls are
// not cancelled; their late results are discarded when they arrive.
func (c *PresaleController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Refresh fetches a fresh snapshot (and the position for identity, when
// non-empty). A second Refresh while one is in flight is coalesced: it
// returns immediately without touching the gateway.
func (c *PresaleController) Refresh(ctx context.Context, identity string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.refreshInFlight {
		c.mu.Unlock()
		return nil
	}
	c.refreshInFlight = true
	if c.state == StateIdle {
		c.state = StateLoading
	}
	c.mu.Unlock()

	err := c.doRefresh(ctx, identity)

	c.mu.Lock()
	c.refreshInFlight = false
	if c.state == StateLoading {
		c.state = StateIdle
	}
	c.mu.Unlock()

	return err
}

func (c *PresaleController) doRefresh(ctx context.Context, identity string) error {
	ok, err := c.gateway.VerifyNetwork(ctx)
	if err != nil {
		return c.failRefresh(errors.Wrap(err, "network verification"))
	}
	if !ok {
		wrongNet := errors.Wrapf(ErrWrongNetwork, "expected chain %d", c.expectedChainID)
		c.recordError(wrongNet)
		return wrongNet
	}

	snapshot, err := c.gateway.SaleInfo(ctx)
	if err != nil {
		return c.failRefresh(err)
	}
	if err := snapshot.Validate(); err != nil {
		return c.failRefresh(errors.Wrap(err, "invalid snapshot"))
	}

	var position domain.UserPosition
	positionFetched := false
	if identity != "" {
		position, err = c.gateway.UserInfo(ctx, identity)
		if err != nil {
			return c.failRefresh(errors.Wrapf(err, "user info for %s", identity))
		}
		positionFetched = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// surface closed while the fetch was in flight, drop the result.
		return nil
	}
	c.snapshot = snapshot
	c.hasSnapshot = true
	c.identity = identity
	if positionFetched {
		c.position = position
	}
	c.lastError = ""
	return nil
}

// failRefresh classifies a gateway fetch failure. The previous snapshot is
// never cleared: FetchFailed is transient and NotConfigured is recoverable
// via an explicit user-triggered refresh.
func (c *PresaleController) failRefresh(err error) error {
	var classified error
	if isNotConfigured(err) {
		classified = errors.Wrap(ErrNotConfigured, err.Error())
	} else {
		classified = errors.Wrap(ErrFetchFailed, err.Error())
		c.logger.Error("snapshot fetch failed", zap.Error(err))
	}
	c.recordError(classified)
	return classified
}

func isNotConfigured(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not configured")
}

// ValidateAmount parses and validates a user-entered contribution amount
// against the current snapshot bounds. It runs on every keystroke and again
// inside Contribute, so a snapshot change between keystroke and submit
// cannot smuggle an out-of-bounds amount to the gateway.
func (c *PresaleController) ValidateAmount(raw string) (decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validateAmountLocked(raw)
}

func (c *PresaleController) validateAmountLocked(raw string) (decimal.Decimal, error) {
	if !c.hasSnapshot {
		return decimal.Decimal{}, errors.Wrap(ErrNotConfigured, "no sale snapshot loaded")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, ErrNotANumber
	}
	if amount.LessThan(c.snapshot.MinContribution) {
		return decimal.Decimal{}, errors.Wrapf(ErrBelowMinimum, "minimum is %s", c.snapshot.MinContribution.String())
	}
	if amount.GreaterThan(c.snapshot.MaxContribution) {
		return decimal.Decimal{}, errors.Wrapf(ErrAboveMaximum, "maximum is %s", c.snapshot.MaxContribution.String())
	}
	return amount, nil
}

// Contribute validates raw and submits a contribution transaction. On
// success the pending input is cleared, a success message with the truncated
// transaction id and the token yield is recorded, and one refresh is
// triggered. On failure the input is preserved for retry and the gateway's
// reason is surfaced verbatim.
func (c *PresaleController) Contribute(ctx context.Context, raw string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.hasSnapshot || !domain.CanContribute(c.snapshot) {
		notOpen := errors.Wrap(ErrNotEligible, "sale is not accepting contributions")
		c.recordErrorLocked(notOpen)
		c.mu.Unlock()
		return notOpen
	}
	amount, err := c.validateAmountLocked(raw)
	if err != nil {
		c.recordErrorLocked(err)
		c.mu.Unlock()
		return err
	}
	c.state = StateSubmitting
	c.pending = raw
	c.lastError = ""
	c.lastSuccess = ""
	tokenPrice := c.snapshot.TokenPrice
	identity := c.identity
	c.mu.Unlock()

	receipt, err := c.prepareReceipt(domain.SubmissionContribute, amount)
	if err != nil {
		c.finishSubmission(func() {
			c.lastError = err.Error()
		})
		return err
	}

	txID, err := c.gateway.Contribute(ctx, amount)
	if err != nil {
		c.markReceiptFailed(receipt, err)
		submitErr := errors.Wrap(ErrSubmissionFailed, err.Error())
		// pending input stays as-is so the user can retry.
		c.finishSubmission(func() {
			c.lastError = submitErr.Error()
		})
		c.logger.Warn("contribution rejected", zap.String("amount", amount.String()), zap.Error(err))
		return submitErr
	}

	tokens := domain.TokensForAmount(amount, tokenPrice)
	success := fmt.Sprintf("contributed %s (tx %s), %s tokens allocated",
		amount.String(), truncateTxID(txID), tokens.String())
	c.finishSubmission(func() {
		c.lastSuccess = success
		c.lastError = ""
		c.pending = ""
	})
	c.markReceiptDone(receipt, txID)
	c.logger.Info("contribution submitted",
		zap.String("amount", amount.String()),
		zap.String("tokens", tokens.String()),
		zap.String("tx", txID))

	if err := c.Refresh(ctx, identity); err != nil {
		c.logger.Warn("post-contribution refresh failed", zap.Error(err))
	}
	return nil
}

// Claim submits a token claim transaction. The presentation layer hides the
// action unless CanClaim holds, but the precondition is re-checked here so a
// duplicate claim can never reach the gateway.
func (c *PresaleController) Claim(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.hasSnapshot || !domain.CanClaim(c.snapshot, c.position) {
		notClaimable := errors.Wrap(ErrNotEligible, "tokens are not claimable")
		c.recordErrorLocked(notClaimable)
		c.mu.Unlock()
		return notClaimable
	}
	c.state = StateSubmitting
	c.lastError = ""
	c.lastSuccess = ""
	allocation := c.position.TokenAllocation
	identity := c.identity
	c.mu.Unlock()

	receipt, err := c.prepareReceipt(domain.SubmissionClaim, allocation)
	if err != nil {
		c.finishSubmission(func() {
			c.lastError = err.Error()
		})
		return err
	}

	txID, err := c.gateway.ClaimTokens(ctx)
	if err != nil {
		c.markReceiptFailed(receipt, err)
		claimErr := errors.Wrap(ErrClaimFailed, err.Error())
		c.finishSubmission(func() {
			c.lastError = claimErr.Error()
		})
		c.logger.Warn("claim rejected", zap.Error(err))
		return claimErr
	}

	success := fmt.Sprintf("claimed %s tokens (tx %s)", allocation.String(), truncateTxID(txID))
	c.finishSubmission(func() {
		c.lastSuccess = success
		c.lastError = ""
	})
	c.markReceiptDone(receipt, txID)
	c.logger.Info("claim submitted", zap.String("tokens", allocation.String()), zap.String("tx", txID))

	if err := c.Refresh(ctx, identity); err != nil {
		c.logger.Warn("post-claim refresh failed", zap.Error(err))
	}
	return nil
}

// finishSubmission returns the controller to idle and applies mutate under
// the lock. Results arriving after Close are discarded.
func (c *PresaleController) finishSubmission(mutate func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	if c.closed {
		return
	}
	mutate()
}

func (c *PresaleController) prepareReceipt(action domain.SubmissionAction, amount decimal.Decimal) (*domain.Receipt, error) {
	if c.journal == nil {
		return nil, nil
	}
	receipt, err := c.journal.Prepare(action, amount)
	if err != nil {
		return nil, errors.Wrap(err, "journal submission intent")
	}
	return receipt, nil
}

func (c *PresaleController) markReceiptDone(receipt *domain.Receipt, txID string) {
	if c.journal == nil || receipt == nil {
		return
	}
	if err := c.journal.MarkDone(receipt, txID); err != nil {
		c.logger.Error("failed to persist receipt status", zap.Error(err), zap.String("receipt_id", receipt.ID))
	}
}

func (c *PresaleController) markReceiptFailed(receipt *domain.Receipt, cause error) {
	if c.journal == nil || receipt == nil {
		return
	}
	if err := c.journal.MarkFailed(receipt, cause); err != nil {
		c.logger.Error("failed to persist receipt status", zap.Error(err), zap.String("receipt_id", receipt.ID))
	}
}

func (c *PresaleController) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordErrorLocked(err)
}

func (c *PresaleController) recordErrorLocked(err error) {
	if c.closed {
		return
	}
	c.lastError = err.Error()
	c.lastSuccess = ""
}

func truncateTxID(txID string) string {
	if len(txID) <= truncatedTxIDLen {
		return txID
	}
	return txID[:truncatedTxIDLen] + "..."
}
