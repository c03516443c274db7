package txstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	DefaultStorageFileName = ".blend-swap-txs.json"
)

// Storage handles persistence of tracked transactions
type Storage struct {
	filePath     string
	mu           sync.RWMutex
	transactions map[string]*Transaction
}

// TransactionStorage represents the JSON structure for storage
type TransactionStorage struct {
	Transactions map[string]*Transaction `json:"transactions"`
}

// NewStorage creates a new storage instance
func NewStorage(filePath string) (*Storage, error) {
	if filePath == "" {
		// Default to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStorageFileName)
	}

	storage := &Storage{
		filePath:     filePath,
		transactions: make(map[string]*Transaction),
	}

	// Load existing transactions if file exists
	if err := storage.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load transactions: %w", err)
		}
	}

	return storage, nil
}

// load reads transactions from the storage file
func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var ts TransactionStorage
	if err := json.Unmarshal(data, &ts); err != nil {
		return fmt.Errorf("failed to unmarshal transactions: %w", err)
	}

	s.transactions = ts.Transactions
	if s.transactions == nil {
		s.transactions = make(map[string]*Transaction)
	}

	return nil
}

// saveLocked writes transactions to the storage file. Callers hold the lock.
func (s *Storage) saveLocked() error {
	data, err := json.MarshalIndent(TransactionStorage{Transactions: s.transactions}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transactions: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Create adds a new transaction to storage
func (s *Storage) Create(tx *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.ID]; exists {
		return fmt.Errorf("transaction '%s' already exists", tx.ID)
	}
	for _, existing := range s.transactions {
		if strings.EqualFold(existing.Hash, tx.Hash) {
			return fmt.Errorf("transaction with hash '%s' already tracked", tx.Hash)
		}
	}

	stored := *tx
	s.transactions[tx.ID] = &stored
	return s.saveLocked()
}

// Get retrieves a transaction by id
func (s *Storage) Get(id string) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[id]
	if !exists {
		return nil, fmt.Errorf("transaction '%s' not found", id)
	}

	out := *tx
	return &out, nil
}

// FindByHash retrieves a transaction by its hash
func (s *Storage) FindByHash(hash string) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if strings.EqualFold(tx.Hash, hash) {
			out := *tx
			return &out, nil
		}
	}

	return nil, fmt.Errorf("transaction with hash '%s' not found", hash)
}

// Update modifies an existing transaction
func (s *Storage) Update(tx *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.ID]; !exists {
		return fmt.Errorf("transaction '%s' not found", tx.ID)
	}

	stored := *tx
	s.transactions[tx.ID] = &stored
	return s.saveLocked()
}

// List returns all transactions, oldest first
func (s *Storage) List() []*Transaction {
	return s.filter(func(*Transaction) bool { return true })
}

// ListByStatus returns transactions filtered by status, oldest first
func (s *Storage) ListByStatus(status Status) []*Transaction {
	return s.filter(func(tx *Transaction) bool { return tx.Status == status })
}

func (s *Storage) filter(keep func(*Transaction) bool) []*Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]*Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if keep(tx) {
			out := *tx
			txs = append(txs, &out)
		}
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Created.Before(txs[j].Created)
	})
	return txs
}

// Count returns the total number of transactions
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.transactions)
}

// GetFilePath returns the storage file path
func (s *Storage) GetFilePath() string {
	return s.filePath
}
