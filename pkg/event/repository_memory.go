package event

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository holds the event list in a Ledger. Each write swaps the
// ledger for the one returned by the matching command.
type MemoryRepository struct {
	mu     sync.RWMutex
	ledger Ledger
}

func NewMemoryRepository(events ...Event) *MemoryRepository {
	return &MemoryRepository{ledger: NewLedger(events)}
}

func (m *MemoryRepository) Snapshot() Ledger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger
}

func (m *MemoryRepository) List(ctx context.Context) ([]Event, error) {
	return m.Snapshot().Events(), nil
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (Event, error) {
	event, ok := m.Snapshot().Find(id)
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (m *MemoryRepository) Store(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.ledger.Find(event.Id); exists {
		return fmt.Errorf("event %s already exists", event.Id)
	}
	m.ledger = m.ledger.Add(event)
	return nil
}

func (m *MemoryRepository) Update(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledger.Replace(event)
	if !ok {
		return ErrEventNotFound
	}
	m.ledger = ledger
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledger.Remove(id)
	if !ok {
		return ErrEventNotFound
	}
	m.ledger = ledger
	return nil
}

func (m *MemoryRepository) StoreAll(ctx context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger := m.ledger
	for _, event := range events {
		if _, exists := ledger.Find(event.Id); exists {
			return fmt.Errorf("event %s already exists", event.Id)
		}
		ledger = ledger.Add(event)
	}
	m.ledger = ledger
	return nil
}

func (m *MemoryRepository) ReplaceAll(ctx context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger = NewLedger(events)
	return nil
}
