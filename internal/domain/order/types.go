package order

import (
	"fmt"

	"rental-engine/internal/pkg/errs"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPickedUp  Status = "picked_up"
	StatusReturned  Status = "returned"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPickedUp, StatusReturned, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Event string

const (
	EventConfirm        Event = "confirm"
	EventSchedulePickup Event = "schedule_pickup"
	EventMarkPickedUp   Event = "mark_picked_up"
	EventMarkReturned   Event = "mark_returned"
	EventCancel         Event = "cancel"
)

func (e Event) String() string { return string(e) }

func (e Event) IsValid() bool {
	_, ok := eventTargets[e]
	return ok
}

// VendorOnly reports whether only the order's vendor may raise the event.
func (e Event) VendorOnly() bool {
	return e != EventCancel
}

// eventTargets is the state each event asks for. mark_returned records the
// return and closes the order in one step.
var eventTargets = map[Event]Status{
	EventConfirm:        StatusConfirmed,
	EventSchedulePickup: StatusConfirmed,
	EventMarkPickedUp:   StatusPickedUp,
	EventMarkReturned:   StatusCompleted,
	EventCancel:         StatusCancelled,
}

var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventConfirm: StatusConfirmed,
		EventCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		EventSchedulePickup: StatusConfirmed,
		EventMarkPickedUp:   StatusPickedUp,
		EventCancel:         StatusCancelled,
	},
	StatusPickedUp: {
		EventMarkReturned: StatusCompleted,
	},
}

// next returns the state reached from s by e, or a TransitionError.
func next(s Status, e Event) (Status, error) {
	if to, ok := transitions[s][e]; ok {
		return to, nil
	}
	return "", &TransitionError{From: s, Event: e, To: eventTargets[e]}
}

// TransitionError names the state the order is in and the state the event asked for.
type TransitionError struct {
	From  Status
	Event Event
	To    Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: cannot %s order in %s (requested %s)", e.Event, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == errs.ErrInvalidStateTransition
}
