package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type SimulationID string
type ChatID string
type TurnID string

// EventID identifies one exchange inside a simulation timeline. It encodes the
// position of the day in the simulation, the kind of block (session or
// activity), the block index within the day and the exchange index within the
// block, e.g. "d0.session.1.3".
type EventID string

// EventKind is the kind of block an exchange belongs to.
type EventKind string

const (
	KindSession  EventKind = "session"
	KindActivity EventKind = "activity"
)

var ErrInvalidEventID = errors.New("invalid event id")

func NewTurnID() TurnID {
	return TurnID(uuid.New().String())
}

// NewEventID builds the event id for an exchange position.
func NewEventID(dayIndex int, kind EventKind, sub, exchange int) EventID {
	return EventID(fmt.Sprintf("d%d.%s.%d.%d", dayIndex, kind, sub, exchange))
}

// EventPosition is the decoded form of an EventID.
type EventPosition struct {
	DayIndex int
	Kind     EventKind
	Sub      int
	Exchange int
}

// ParseEventID decodes an id produced by NewEventID.
func ParseEventID(id EventID) (EventPosition, error) {
	parts := strings.Split(string(id), ".")
	if len(parts) != 4 || !strings.HasPrefix(parts[0], "d") {
		return EventPosition{}, fmt.Errorf("%w: %q", ErrInvalidEventID, id)
	}

	var pos EventPosition
	switch EventKind(parts[1]) {
	case KindSession, KindActivity:
		pos.Kind = EventKind(parts[1])
	default:
		return EventPosition{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidEventID, parts[1])
	}

	nums := []string{parts[0][1:], parts[2], parts[3]}
	dst := []*int{&pos.DayIndex, &pos.Sub, &pos.Exchange}
	for i, s := range nums {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return EventPosition{}, fmt.Errorf("%w: %q", ErrInvalidEventID, id)
		}
		*dst[i] = n
	}
	return pos, nil
}
