package txstore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"blend-swap/pkg/observability"
)

// Manager provides high-level operations for tracked transactions
type Manager struct {
	storage *Storage
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewManager creates a new transaction manager
func NewManager(storagePath string, logger *slog.Logger, metrics *observability.Metrics) (*Manager, error) {
	storage, err := NewStorage(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	return &Manager{
		storage: storage,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// AddApproval records a broadcast approval transaction
func (m *Manager) AddApproval(hash common.Hash, token, spender common.Address, summary string) (*Transaction, error) {
	tx := &Transaction{
		ID:      uuid.New().String(),
		Hash:    hash.Hex(),
		Kind:    KindApproval,
		Summary: summary,
		Created: time.Now(),
		Token:   token.Hex(),
		Spender: spender.Hex(),
		Status:  StatusPending,
	}
	return tx, m.add(tx)
}

// AddBlend records a broadcast blend transaction
func (m *Manager) AddBlend(hash common.Hash, summary string) (*Transaction, error) {
	tx := &Transaction{
		ID:      uuid.New().String(),
		Hash:    hash.Hex(),
		Kind:    KindBlend,
		Summary: summary,
		Created: time.Now(),
		Status:  StatusPending,
	}
	return tx, m.add(tx)
}

func (m *Manager) add(tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := m.storage.Create(tx); err != nil {
		return err
	}
	m.logger.Info("tracking transaction", "kind", tx.Kind, "hash", tx.Hash, "summary", tx.Summary)
	return nil
}

// HasPendingApproval returns true if an approval for token and spender is
// still waiting for its receipt
func (m *Manager) HasPendingApproval(token, spender common.Address) bool {
	for _, tx := range m.storage.ListByStatus(StatusPending) {
		if tx.Kind != KindApproval {
			continue
		}
		if common.HexToAddress(tx.Token) == token && common.HexToAddress(tx.Spender) == spender {
			return true
		}
	}
	return false
}

// Finalize records the outcome of a pending transaction
func (m *Manager) Finalize(hash common.Hash, status Status, block uint64, errMsg string) error {
	if status == StatusPending {
		return fmt.Errorf("cannot finalize with status '%s'", status)
	}

	tx, err := m.storage.FindByHash(hash.Hex())
	if err != nil {
		return err
	}
	if !tx.IsPending() {
		return fmt.Errorf("transaction '%s' is already %s", tx.Hash, tx.Status)
	}

	now := time.Now()
	tx.Status = status
	tx.Block = block
	tx.Error = errMsg
	tx.Finalized = &now

	if err := m.storage.Update(tx); err != nil {
		return err
	}
	m.metrics.ObserveTransaction(string(tx.Kind), string(status))
	m.logger.Info("transaction finalized", "kind", tx.Kind, "hash", tx.Hash, "status", status, "block", block)
	return nil
}

// GetTransaction retrieves a transaction by id
func (m *Manager) GetTransaction(id string) (*Transaction, error) {
	return m.storage.Get(id)
}

// List returns all tracked transactions
func (m *Manager) List() []*Transaction {
	return m.storage.List()
}

// Pending returns transactions still waiting for a receipt
func (m *Manager) Pending() []*Transaction {
	return m.storage.ListByStatus(StatusPending)
}

// GetStorage returns the storage instance
func (m *Manager) GetStorage() *Storage {
	return m.storage
}
