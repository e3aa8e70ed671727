package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	// Events
	r.HandleFunc("/api/event", deps.EventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event/import", deps.EventHandler.ImportEvents).Methods("POST")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/event/{eventId}/attachment", deps.EventHandler.GetAttachment).Methods("GET")

	// Balance
	r.HandleFunc("/api/balance", deps.BalanceHandler.GetMonthlyGroups).Methods("GET")
	r.HandleFunc("/api/balance/summary", deps.BalanceHandler.GetSummary).Methods("GET")
	r.HandleFunc("/api/balance/{year:[0-9]+}/{month}", deps.BalanceHandler.GetMonth).Methods("GET")

	// Settings
	r.HandleFunc("/api/settings/theme", deps.SettingsHandler.GetTheme).Methods("GET")
	r.HandleFunc("/api/settings/theme", deps.SettingsHandler.SetTheme).Methods("PUT")
	r.HandleFunc("/api/settings/theme/toggle", deps.SettingsHandler.ToggleTheme).Methods("POST")
}
