package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("should call subscribers in subscription order", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var calls []int
		for i := range 5 {
			bus.Subscribe(WalletEventCreated, func(Event) error {
				calls = append(calls, i)
				return nil
			})
		}

		// when
		err := bus.Publish(NewEvent(ctx, WalletEventCreated, WalletEventChanged{Id: "e1"}))

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, calls)
	})

	t.Run("should only deliver to subscribers of the type", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		bus.Subscribe(WalletEventDeleted, func(Event) error {
			called = true
			return nil
		})

		require.NoError(t, bus.Publish(NewEvent(ctx, WalletEventCreated, nil)))

		assert.False(t, called)
	})

	t.Run("should keep going after a failure or panic", func(t *testing.T) {
		// given
		bus := NewEventBus()
		bus.Subscribe(ThemeChanged, func(Event) error { return errors.New("broker down") })
		bus.Subscribe(ThemeChanged, func(Event) error { panic("boom") })
		reached := false
		bus.Subscribe(ThemeChanged, func(Event) error {
			reached = true
			return nil
		})

		// when
		err := bus.Publish(NewEvent(ctx, ThemeChanged, ThemeUpdated{Theme: "dark"}))

		// then
		assert.True(t, reached)
		assert.ErrorContains(t, err, "broker down")
		assert.ErrorContains(t, err, "panicked on settings.theme.changed: boom")
	})

	t.Run("should not publish on a cancelled context", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		bus.Subscribe(WalletEventCreated, func(Event) error {
			called = true
			return nil
		})
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := bus.Publish(NewEvent(cancelled, WalletEventCreated, nil))

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("should stop delivering after unsubscribe", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var calls []string
		unsubscribe := bus.Subscribe(WalletEventUpdated, func(Event) error {
			calls = append(calls, "first")
			return nil
		})
		bus.Subscribe(WalletEventUpdated, func(Event) error {
			calls = append(calls, "second")
			return nil
		})

		// when
		unsubscribe()
		require.NoError(t, bus.Publish(NewEvent(ctx, WalletEventUpdated, nil)))

		// then
		assert.Equal(t, []string{"second"}, calls)
	})
}

func TestSubscribeTyped(t *testing.T) {
	// given
	bus := NewEventBus()
	var received []WalletEventsImported
	SubscribeTyped(bus, WalletEventsImport, func(e EventT[WalletEventsImported]) error {
		assert.Equal(t, WalletEventsImport, e.Type)
		received = append(received, e.Data)
		return nil
	})

	// when
	require.NoError(t, bus.Publish(NewEvent(context.Background(), WalletEventsImport, WalletEventsImported{Count: 3})))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), WalletEventsImport, "not a payload")))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), WalletEventsImport, nil)))

	// then
	assert.Equal(t, []WalletEventsImported{{Count: 3}}, received)
}
