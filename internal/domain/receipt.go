package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionAction identifies the kind of on-chain submission.
type SubmissionAction string

const (
	// SubmissionContribute contribution transaction.
	SubmissionContribute SubmissionAction = "contribute"
	// SubmissionClaim token claim transaction.
	SubmissionClaim SubmissionAction = "claim"
)

// SubmissionStatus lifecycle of a journaled submission.
type SubmissionStatus string

const (
	// SubmissionPending recorded before the gateway call is issued.
	SubmissionPending SubmissionStatus = "pending"
	// SubmissionDone gateway confirmed the transaction.
	SubmissionDone SubmissionStatus = "done"
	// SubmissionFailed gateway rejected or the call errored.
	SubmissionFailed SubmissionStatus = "failed"
)

// Receipt is one journaled submission attempt.
type Receipt struct {
	ID     string           `json:"id"`
	Action SubmissionAction `json:"action"`
	Status SubmissionStatus `json:"status"`
	Amount decimal.Decimal  `json:"amount"`
	TxID   string           `json:"tx_id,omitempty"`
	Error  string           `json:"error,omitempty"`
	Time   time.Time        `json:"time"`
}

// ReceiptRecord pairs a receipt with its journal index for stream resumption.
type ReceiptRecord struct {
	Index   uint64  `json:"index"`
	Receipt Receipt `json:"receipt"`
}
