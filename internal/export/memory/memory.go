package memory

import (
	"context"
	"sync"

	"budget/internal/export"
)

// Store is an in-memory RowAppender used in tests and when no external
// ledger is configured.
type Store struct {
	mu   sync.Mutex
	rows []export.Row
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, rows ...export.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []export.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.Row(nil), s.rows...)
}
