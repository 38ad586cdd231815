package session

import (
	"errors"
	"sync"
)

// Errors returned by the session store.
var (
	ErrNameRequired    = errors.New("customer name is required")
	ErrInvalidGuests   = errors.New("guests must be >= 1")
	ErrNoActiveSession = errors.New("no active session")
)

// Table points at the table assigned to the active session.
type Table struct {
	ID     string `json:"tableId"`
	Number int32  `json:"tableNo"`
}

// Session is the active dine-in customer context. Table is optional until
// the cashier assigns one.
type Session struct {
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	Guests       int32  `json:"guests"`
	Table        *Table `json:"table,omitempty"`
}

// Store holds at most one active session. "No session" is explicit (nil),
// never an empty sentinel value.
type Store struct {
	mu     sync.Mutex
	active *Session
}

// NewStore creates a store with no active session.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the active session wholesale. Fields are never edited in
// place after confirmation; a change means a full replacement.
func (s *Store) Set(sess Session) error {
	if sess.CustomerName == "" {
		return ErrNameRequired
	}
	if sess.Guests < 1 {
		return ErrInvalidGuests
	}

	copied := sess
	if sess.Table != nil {
		t := *sess.Table
		copied.Table = &t
	}

	s.mu.Lock()
	s.active = &copied
	s.mu.Unlock()
	return nil
}

// SetTable updates only the table of the active session. This is the single
// partial-update exception to full replacement.
func (s *Store) SetTable(t Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoActiveSession
	}
	s.active.Table = &t
	return nil
}

// Clear drops the active session. Safe to call with no session.
func (s *Store) Clear() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

// Active returns a copy of the active session and whether one exists.
func (s *Store) Active() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return Session{}, false
	}
	out := *s.active
	if s.active.Table != nil {
		t := *s.active.Table
		out.Table = &t
	}
	return out, true
}
