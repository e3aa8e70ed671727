package event_bus

const (
	WalletEventCreated EventType = "wallet.event.created"
	WalletEventUpdated EventType = "wallet.event.updated"
	WalletEventDeleted EventType = "wallet.event.deleted"
	WalletEventsImport EventType = "wallet.events.imported"
	ThemeChanged       EventType = "settings.theme.changed"
)

// WalletEventChanged is published after an event was created or updated.
// Amount is the decimal string of the positive amount.
type WalletEventChanged struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Kind   string `json:"kind"`
}

type WalletEventRemoved struct {
	Id string `json:"id"`
}

type WalletEventsImported struct {
	Count    int  `json:"count"`
	Replaced bool `json:"replaced"`
}

type ThemeUpdated struct {
	Theme string `json:"theme"`
}
