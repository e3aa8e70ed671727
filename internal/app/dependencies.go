package app

import (
	"github.com/walletfy/walletfy/internal/config"
	"github.com/walletfy/walletfy/internal/event_bus"
	"github.com/walletfy/walletfy/pkg/balance"
	"github.com/walletfy/walletfy/pkg/event"
	"github.com/walletfy/walletfy/pkg/settings"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	EventService *event.ServiceImpl
	EventHandler *event.Handler

	BalanceService *balance.ServiceImpl
	CsvRenderer    *balance.CsvRendererImpl
	BalanceHandler *balance.Handler

	SettingsService *settings.ServiceImpl
	SettingsHandler *settings.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(storage *Storage, bus *event_bus.EventBus, cfg config.Application) (*Dependencies, error) {
	location, err := cfg.Server.TimeLocation()
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{EventBus: bus}

	deps.EventService = event.NewService(storage.Events, event.NewValidator(location), bus, cfg.Attachments.MaxBytes)
	deps.EventHandler = event.NewEventHandler(deps.EventService, cfg.Attachments.MaxBytes)

	deps.BalanceService = balance.NewService(deps.EventService)
	deps.CsvRenderer = balance.NewCsvRenderer()
	deps.BalanceHandler = balance.NewBalanceHandler(deps.BalanceService, deps.CsvRenderer)

	deps.SettingsService = settings.NewService(storage.Settings, bus)
	deps.SettingsHandler = settings.NewSettingsHandler(deps.SettingsService)

	return deps, nil
}
