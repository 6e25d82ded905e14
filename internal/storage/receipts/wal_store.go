// Package receipts persists submission receipts in a WAL so that the
// dashboard can tail them and restarts do not lose the submission history.
package receipts

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/presale/internal/domain"
)

const (
	defaultReceiptsDir      = "./wal/receipts"
	receiptSegmentThreshold = 1000
	receiptMaxSegments      = 100
	receiptKeyPrefix        = "receipt_"
)

// WALStore is a WAL-backed journal of submission receipts.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens (or creates) the receipt WAL under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultReceiptsDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "log_",
		SegmentThreshold: receiptSegmentThreshold,
		MaxSegments:      receiptMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init receipts WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Prepare journals a pending submission before the gateway call is issued.
func (s *WALStore) Prepare(action domain.SubmissionAction, amount decimal.Decimal) (*domain.Receipt, error) {
	receipt := &domain.Receipt{
		ID:     uuid.New().String(),
		Action: action,
		Status: domain.SubmissionPending,
		Amount: amount,
		Time:   time.Now(),
	}
	if err := s.persist(receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// MarkDone records a confirmed submission with its transaction id.
func (s *WALStore) MarkDone(receipt *domain.Receipt, txID string) error {
	if receipt == nil {
		return nil
	}
	receipt.Status = domain.SubmissionDone
	receipt.TxID = txID
	receipt.Error = ""
	return s.persist(receipt)
}

// MarkFailed records a rejected submission with the gateway's reason.
func (s *WALStore) MarkFailed(receipt *domain.Receipt, cause error) error {
	if receipt == nil {
		return nil
	}
	receipt.Status = domain.SubmissionFailed
	if cause != nil {
		receipt.Error = cause.Error()
	} else {
		receipt.Error = ""
	}
	return s.persist(receipt)
}

// ReceiptsAfter returns all receipt records written after the provided WAL
// index, oldest first. A receipt appears once per status transition; the
// record with the highest index is the current state.
func (s *WALStore) ReceiptsAfter(index uint64) ([]domain.ReceiptRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("receipts store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.ReceiptRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, receiptKeyPrefix) {
			continue
		}
		var receipt domain.Receipt
		if err := json.Unmarshal(payload, &receipt); err != nil {
			return nil, errors.Wrap(err, "decode receipt")
		}
		records = append(records, domain.ReceiptRecord{
			Index:   idx,
			Receipt: receipt,
		})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("receipts store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}

func (s *WALStore) persist(receipt *domain.Receipt) error {
	if s == nil || s.wal == nil {
		return errors.New("receipts store is not initialized")
	}

	payload, err := json.Marshal(receipt)
	if err != nil {
		return errors.Wrap(err, "marshal receipt")
	}
	key := fmt.Sprintf("%s%s", receiptKeyPrefix, receipt.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}
