package event_bus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type EventType string

// Event is what gets delivered to subscribers. Data holds one of the payload
// types declared in events.go.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{
		ctx:       ctx,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context is the context of the request that caused the change.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is an Event whose payload has already been asserted to T.
type EventT[T any] struct {
	Event
	Data T
}

type subscription struct {
	id      uint64
	handler func(Event) error
}

// EventBus delivers change notifications in process. Publish runs every
// subscriber of the event type synchronously, in subscription order.
type EventBus struct {
	mu     sync.RWMutex
	topics map[EventType][]subscription
	nextID uint64
}

func NewEventBus() *EventBus {
	return &EventBus{topics: make(map[EventType][]subscription)}
}

// Subscribe registers h for eventType. Calling the returned function removes it.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	id := eb.nextID
	eb.topics[eventType] = append(eb.topics[eventType], subscription{id: id, handler: h})

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		remaining := slices.DeleteFunc(eb.topics[eventType], func(s subscription) bool { return s.id == id })
		if len(remaining) == 0 {
			delete(eb.topics, eventType)
			return
		}
		eb.topics[eventType] = remaining
	}
}

// SubscribeTyped registers a handler that only sees payloads of type T.
// Events carrying anything else are skipped.
//
//	event_bus.SubscribeTyped(bus, event_bus.WalletEventCreated,
//	    func(e event_bus.EventT[event_bus.WalletEventChanged]) error {
//	        log.Infof("recorded %s %s on %s", e.Data.Kind, e.Data.Amount, e.Data.Date)
//	        return nil
//	    })
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(EventT[T]) error) (unsubscribe func()) {
	return eb.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("EventBus: %s carries %T, not %T, skipping", eventType, e.Data, *new(T))
			return nil
		}
		return h(EventT[T]{Event: e, Data: payload})
	})
}

// Publish hands e to the subscribers of e.Type. A failing or panicking
// subscriber does not stop the others; their errors are joined. Subscribers
// left when the event's context is cancelled are skipped.
func (eb *EventBus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s not published: %w", e.Type, err)
	}

	eb.mu.RLock()
	subscribers := slices.Clone(eb.topics[e.Type])
	eb.mu.RUnlock()

	var errs []error
	for _, s := range subscribers {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("event %s interrupted: %w", e.Type, err))
			break
		}
		if err := deliver(s, e); err != nil {
			log.Errorf("EventBus: subscriber %d failed on %s: %v", s.id, e.Type, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber %d panicked on %s: %v", s.id, e.Type, r)
		}
	}()
	return s.handler(e)
}
