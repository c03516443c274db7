package txstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	DefaultCheckInterval = 15 * time.Second // Poll receipts every 15 seconds
	MinCheckInterval     = 2 * time.Second  // Minimum interval to avoid rate limiting
)

// ReceiptReader fetches transaction receipts. ethclient.Client satisfies it.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Watcher polls receipts for pending transactions and finalizes them
type Watcher struct {
	manager       *Manager
	receipts      ReceiptReader
	logger        *slog.Logger
	checkInterval time.Duration
	running       bool
	stopChan      chan struct{}
	doneChan      chan struct{}
	mu            sync.Mutex
}

// NewWatcher creates a new watcher instance
func NewWatcher(manager *Manager, receipts ReceiptReader, logger *slog.Logger) *Watcher {
	return &Watcher{
		manager:       manager,
		receipts:      receipts,
		logger:        logger,
		checkInterval: DefaultCheckInterval,
	}
}

// SetCheckInterval sets the receipt polling interval
func (w *Watcher) SetCheckInterval(interval time.Duration) {
	if interval < MinCheckInterval {
		interval = MinCheckInterval
	}
	w.checkInterval = interval
}

// Check polls every pending transaction once and returns how many were finalized
func (w *Watcher) Check(ctx context.Context) (int, error) {
	finalized := 0
	for _, tx := range w.manager.Pending() {
		hash := common.HexToHash(tx.Hash)

		receipt, err := w.receipts.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				continue
			}
			if ctx.Err() != nil {
				return finalized, ctx.Err()
			}
			w.logger.Warn("receipt lookup failed", "hash", tx.Hash, "error", err)
			continue
		}

		status, errMsg := StatusConfirmed, ""
		if receipt.Status != types.ReceiptStatusSuccessful {
			status, errMsg = StatusFailed, "transaction reverted"
		}

		var block uint64
		if receipt.BlockNumber != nil {
			block = receipt.BlockNumber.Uint64()
		}

		if err := w.manager.Finalize(hash, status, block, errMsg); err != nil {
			return finalized, fmt.Errorf("failed to finalize %s: %w", tx.Hash, err)
		}
		finalized++
	}
	return finalized, nil
}

// Start begins polling in the background until Stop is called or ctx is done
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher is already running")
	}

	w.running = true
	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})

	go w.monitor(ctx, w.stopChan, w.doneChan)
	return nil
}

// Stop halts polling and waits for the background loop to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	done := w.doneChan
	w.mu.Unlock()

	<-done
}

func (w *Watcher) monitor(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	w.logger.Debug("watching pending transactions", "interval", w.checkInterval)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := w.Check(ctx); err != nil {
				w.logger.Warn("receipt check failed", "error", err)
			} else if n > 0 {
				w.logger.Info("finalized transactions", "count", n)
			}
		}
	}
}
