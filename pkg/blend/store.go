package blend

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"blend-swap/pkg/observability"
)

// DefaultJournalFileName is the journal file used when no path is configured.
const DefaultJournalFileName = ".blend-swap-session.json"

// Store owns the blend state and the append-only journal of actions that
// produced it. Dispatches are serialized.
type Store struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	path    string

	mu      sync.Mutex
	state   State
	journal []Action
}

// journalFile is the JSON layout of a persisted journal.
type journalFile struct {
	Actions []Action `json:"actions"`
}

// NewStore returns an in-memory store at the initial state.
func NewStore(logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		logger:  logger,
		metrics: metrics,
		state:   InitialState(),
	}
}

// LoadJournal returns a store backed by the journal at path, replaying any
// actions already recorded there. A missing file yields the initial state.
func LoadJournal(path string, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, DefaultJournalFileName)
	}

	s := NewStore(logger, metrics)
	s.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var jf journalFile
	if err := json.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journal: %w", err)
	}
	s.Replay(jf.Actions)
	return s, nil
}

// Dispatch applies action and records it in the journal.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	action = cloneAction(action)
	s.state = Reduce(s.logger, s.state, action)
	s.journal = append(s.journal, action)
	s.metrics.ObserveAction(string(action.Type))
	return s.state.Clone()
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Actions returns a copy of the journal.
func (s *Store) Actions() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Action, len(s.journal))
	for i, a := range s.journal {
		out[i] = cloneAction(a)
	}
	return out
}

// Undo drops the last journaled action and rebuilds the state from the rest.
// It reports false when the journal is empty.
func (s *Store) Undo() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.journal) == 0 {
		return s.state.Clone(), false
	}
	s.journal = s.journal[:len(s.journal)-1]
	s.state = replay(s.logger, s.journal)
	return s.state.Clone(), true
}

// Reset clears the journal and returns to the initial state.
func (s *Store) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal = nil
	s.state = InitialState()
	return s.state.Clone()
}

// Replay replaces the journal with actions and rebuilds the state from the
// initial state.
func (s *Store) Replay(actions []Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal = make([]Action, len(actions))
	for i, a := range actions {
		s.journal[i] = cloneAction(a)
	}
	s.state = replay(s.logger, s.journal)
	return s.state.Clone()
}

// Path returns the journal file path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Save writes the journal to disk. In-memory stores are not persisted.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	data, err := json.MarshalIndent(journalFile{Actions: s.journal}, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func replay(logger *slog.Logger, actions []Action) State {
	state := InitialState()
	for _, a := range actions {
		state = Reduce(logger, state, a)
	}
	return state
}

func cloneAction(a Action) Action {
	if a.Index != nil {
		i := *a.Index
		a.Index = &i
	}
	if a.Recipient != nil {
		r := *a.Recipient
		a.Recipient = &r
	}
	return a
}
