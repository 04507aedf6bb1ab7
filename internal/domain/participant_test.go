package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewParticipant(t *testing.T) {
	p, err := NewParticipant("c1", "Alice")
	if err != nil {
		t.Fatalf("NewParticipant: %v", err)
	}
	if p.ID != "c1" || p.Name != "Alice" {
		t.Fatalf("participant = %+v", p)
	}

	if _, err := NewParticipant("c1", ""); !errors.Is(err, ErrNameEmpty) {
		t.Fatalf("empty name: %v", err)
	}
	if _, err := NewParticipant("c1", strings.Repeat("x", MaxNameLen+1)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("long name: %v", err)
	}
	if _, err := NewParticipant("c1", strings.Repeat("x", MaxNameLen)); err != nil {
		t.Fatalf("max-length name should pass: %v", err)
	}
}
