package types

import (
	"errors"
	"testing"
)

func TestNewTurnID(t *testing.T) {
	id := NewTurnID()
	if id == "" {
		t.Error("expected non-empty TurnID")
	}
	if len(string(id)) != 36 {
		t.Errorf("expected UUID format, got %s", id)
	}
	if id == NewTurnID() {
		t.Error("expected distinct turn ids")
	}
}

func TestEventIDFormat(t *testing.T) {
	id := NewEventID(2, KindActivity, 1, 4)
	expected := EventID("d2.activity.1.4")
	if id != expected {
		t.Errorf("expected %s, got %s", expected, id)
	}
}

func TestParseEventIDRoundTrip(t *testing.T) {
	id := NewEventID(0, KindSession, 1, 3)
	pos, err := ParseEventID(id)
	if err != nil {
		t.Fatal(err)
	}
	want := EventPosition{DayIndex: 0, Kind: KindSession, Sub: 1, Exchange: 3}
	if pos != want {
		t.Errorf("expected %+v, got %+v", want, pos)
	}
}

func TestParseEventIDRejectsGarbage(t *testing.T) {
	for _, id := range []EventID{"", "d0.session.1", "x0.session.1.2", "d0.chat.1.2", "d0.session.a.2", "d-1.session.0.0"} {
		if _, err := ParseEventID(id); !errors.Is(err, ErrInvalidEventID) {
			t.Errorf("ParseEventID(%q): expected ErrInvalidEventID, got %v", id, err)
		}
	}
}
