package session

import (
	"errors"
	"testing"
)

func TestSetAndActive(t *testing.T) {
	s := NewStore()

	if _, ok := s.Active(); ok {
		t.Fatal("fresh store reports an active session")
	}

	err := s.Set(Session{CustomerName: "Jon", Phone: "01700000000", Guests: 2})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	sess, ok := s.Active()
	if !ok {
		t.Fatal("no active session after Set")
	}
	if sess.CustomerName != "Jon" || sess.Guests != 2 {
		t.Errorf("session = %+v", sess)
	}
}

func TestSetValidation(t *testing.T) {
	tests := []struct {
		name    string
		sess    Session
		wantErr error
	}{
		{"missing name", Session{Guests: 2}, ErrNameRequired},
		{"zero guests", Session{CustomerName: "Jon"}, ErrInvalidGuests},
		{"negative guests", Session{CustomerName: "Jon", Guests: -1}, ErrInvalidGuests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			if err := s.Set(tt.sess); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if _, ok := s.Active(); ok {
				t.Error("rejected Set left an active session")
			}
		})
	}
}

func TestSetReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.Set(Session{CustomerName: "Jon", Phone: "01700000000", Guests: 2, Table: &Table{ID: "t1", Number: 4}})

	s.Set(Session{CustomerName: "Arya", Guests: 1})

	sess, _ := s.Active()
	if sess.CustomerName != "Arya" || sess.Phone != "" || sess.Table != nil {
		t.Errorf("replacement kept old fields: %+v", sess)
	}
}

func TestSetTable(t *testing.T) {
	s := NewStore()
	s.Set(Session{CustomerName: "Jon", Guests: 2})

	if err := s.SetTable(Table{ID: "t7", Number: 7}); err != nil {
		t.Fatalf("SetTable: %v", err)
	}

	sess, _ := s.Active()
	if sess.Table == nil || sess.Table.Number != 7 {
		t.Errorf("table not set: %+v", sess.Table)
	}
	if sess.CustomerName != "Jon" {
		t.Error("SetTable disturbed other fields")
	}
}

func TestSetTableWithoutSession(t *testing.T) {
	s := NewStore()

	if err := s.SetTable(Table{ID: "t7", Number: 7}); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Set(Session{CustomerName: "Jon", Guests: 2})

	s.Clear()
	if _, ok := s.Active(); ok {
		t.Fatal("session survived Clear")
	}

	// Clearing an empty store is a no-op, not an error.
	s.Clear()
}

func TestActiveReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Set(Session{CustomerName: "Jon", Guests: 2, Table: &Table{ID: "t1", Number: 1}})

	sess, _ := s.Active()
	sess.CustomerName = "tampered"
	sess.Table.Number = 99

	fresh, _ := s.Active()
	if fresh.CustomerName != "Jon" || fresh.Table.Number != 1 {
		t.Error("external mutation leaked into the store")
	}
}
