package event

import "slices"

// Ledger is an immutable snapshot of the event list. Every command returns a
// new Ledger and leaves the receiver untouched.
type Ledger struct {
	events []Event
}

func NewLedger(events []Event) Ledger {
	return Ledger{events: slices.Clone(events)}
}

// Events returns a copy of the events in insertion order.
func (l Ledger) Events() []Event {
	return slices.Clone(l.events)
}

func (l Ledger) Len() int {
	return len(l.events)
}

func (l Ledger) Find(id string) (Event, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Event{}, false
	}
	return l.events[idx], true
}

func (l Ledger) Add(event Event) Ledger {
	events := make([]Event, 0, len(l.events)+1)
	events = append(events, l.events...)
	events = append(events, event)
	return Ledger{events: events}
}

// Replace swaps the event with the same id in place. The second return value
// is false, and the ledger unchanged, when no such event exists.
func (l Ledger) Replace(event Event) (Ledger, bool) {
	idx := l.indexOf(event.Id)
	if idx < 0 {
		return l, false
	}
	events := slices.Clone(l.events)
	events[idx] = event
	return Ledger{events: events}, true
}

func (l Ledger) Remove(id string) (Ledger, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return l, false
	}
	events := make([]Event, 0, len(l.events)-1)
	events = append(events, l.events[:idx]...)
	events = append(events, l.events[idx+1:]...)
	return Ledger{events: events}, true
}

func (l Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.events, func(e Event) bool {
		return e.Id == id
	})
}
