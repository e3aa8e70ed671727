package event

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walletfy/walletfy/internal/rest"
)

func setupRouter(t *testing.T, events ...Event) (*mux.Router, *MemoryRepository) {
	service, repo, _ := setupService(t, events...)
	handler := NewEventHandler(service, 16)
	router := mux.NewRouter()
	router.HandleFunc("/api/event", handler.ListEvents).Methods("GET")
	router.HandleFunc("/api/event", handler.CreateEvent).Methods("POST")
	router.HandleFunc("/api/event/import", handler.ImportEvents).Methods("POST")
	router.HandleFunc("/api/event/{eventId}", handler.GetEvent).Methods("GET")
	router.HandleFunc("/api/event/{eventId}", handler.UpdateEvent).Methods("PUT")
	router.HandleFunc("/api/event/{eventId}", handler.DeleteEvent).Methods("DELETE")
	router.HandleFunc("/api/event/{eventId}/attachment", handler.GetAttachment).Methods("GET")
	return router, repo
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_CreateEvent(t *testing.T) {
	t.Run("should create an event and encode the amount as a number", func(t *testing.T) {
		// given
		router, repo := setupRouter(t)

		// when
		rr := serve(router, "POST", "/api/event", `{"name":"Coffee","amount":3.5,"date":"2024-03-01","kind":"expense"}`)

		// then
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"id":"id-1","name":"Coffee","amount":3.5,"date":"2024-03-01","kind":"expense"}`, rr.Body.String())
		assert.Equal(t, 1, repo.Snapshot().Len())
	})

	t.Run("should accept the amount as a string", func(t *testing.T) {
		// given
		router, _ := setupRouter(t)

		// when
		rr := serve(router, "POST", "/api/event", `{"name":"Coffee","amount":"3.50","date":"2024-03-01","kind":"expense"}`)

		// then
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"amount":3.5`)
	})

	t.Run("should return field errors", func(t *testing.T) {
		// given
		router, _ := setupRouter(t)

		// when
		rr := serve(router, "POST", "/api/event", `{"name":"","amount":0,"date":"2024-03-01","kind":"expense"}`)

		// then
		require.Equal(t, http.StatusBadRequest, rr.Code)
		var resp rest.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid event", resp.Error)
		assert.Equal(t, map[string]string{
			"name":   "name is required",
			"amount": "amount must be a positive number greater than 0",
		}, resp.Fields)
	})

	t.Run("should reject malformed json", func(t *testing.T) {
		// given
		router, _ := setupRouter(t)

		// when
		rr := serve(router, "POST", "/api/event", `{"name":`)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid request body format")
	})

	t.Run("should reject amounts out of float range", func(t *testing.T) {
		// given
		router, repo := setupRouter(t)

		// when
		rr := serve(router, "POST", "/api/event", `{"name":"Huge","amount":1e400,"date":"2024-03-01","kind":"income"}`)

		// then
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), `"amount":"amount must be a number"`)
		assert.Equal(t, 0, repo.Snapshot().Len())
	})

	t.Run("should reject bodies over the size limit", func(t *testing.T) {
		// given
		router, repo := setupRouter(t)
		description := strings.Repeat("x", 70*1024)

		// when
		rr := serve(router, "POST", "/api/event", `{"name":"Big","amount":1,"date":"2024-03-01","kind":"income","description":"`+description+`"}`)

		// then
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Contains(t, rr.Body.String(), "Request body too large")
		assert.Equal(t, 0, repo.Snapshot().Len())
	})
}

func TestHandler_ReadUpdateDelete(t *testing.T) {
	jan := NewDate(2024, time.January, 10)

	t.Run("should list events", func(t *testing.T) {
		// given
		router, _ := setupRouter(t, testEvent("a", Income, 10, jan))

		// when
		rr := serve(router, "GET", "/api/event", "")

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[{"id":"a","name":"event a","amount":10,"date":"2024-01-10","kind":"income"}]`, rr.Body.String())
	})

	t.Run("should list no events as an empty array", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := serve(router, "GET", "/api/event", "")
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("should return 404 for a missing event", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := serve(router, "GET", "/api/event/nope", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("should update an event", func(t *testing.T) {
		// given
		router, repo := setupRouter(t, testEvent("a", Income, 10, jan))

		// when
		rr := serve(router, "PUT", "/api/event/a", `{"name":"Renamed","amount":11,"date":"2024-01-11","kind":"income"}`)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		stored, _ := repo.Get(ctx, "a")
		assert.Equal(t, "Renamed", stored.Name)
	})

	t.Run("should reject a mismatching id in the body", func(t *testing.T) {
		router, _ := setupRouter(t, testEvent("a", Income, 10, jan))
		rr := serve(router, "PUT", "/api/event/a", `{"id":"b","name":"x","amount":1,"date":"2024-01-11","kind":"income"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should delete an event", func(t *testing.T) {
		// given
		router, repo := setupRouter(t, testEvent("a", Income, 10, jan))

		// when
		rr := serve(router, "DELETE", "/api/event/a", "")

		// then
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, 0, repo.Snapshot().Len())
		assert.Equal(t, http.StatusNotFound, serve(router, "DELETE", "/api/event/a", "").Code)
	})
}

func TestHandler_GetAttachment(t *testing.T) {
	jan := NewDate(2024, time.January, 10)

	t.Run("should serve the decoded attachment", func(t *testing.T) {
		// given
		withAttachment := testEvent("a", Expense, 10, jan)
		withAttachment.Attachment = dataURI("image/png", []byte("png-bytes"))
		router, _ := setupRouter(t, withAttachment)

		// when
		rr := serve(router, "GET", "/api/event/a/attachment", "")

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", rr.Body.String())
	})

	t.Run("should return 404 when the event has no attachment", func(t *testing.T) {
		router, _ := setupRouter(t, testEvent("a", Expense, 10, jan))
		rr := serve(router, "GET", "/api/event/a/attachment", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_ImportEvents(t *testing.T) {
	jan := NewDate(2024, time.January, 10)

	t.Run("should replace events", func(t *testing.T) {
		// given
		router, repo := setupRouter(t, testEvent("a", Income, 10, jan))

		// when
		rr := serve(router, "POST", "/api/event/import?replace=true",
			`[{"id":"x","name":"Imported","amount":"5","date":"2024-02-01","kind":"expense"}]`)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"imported":1,"replaced":true}`, rr.Body.String())
		events := repo.Snapshot().Events()
		require.Len(t, events, 1)
		assert.Equal(t, "x", events[0].Id)
	})

	t.Run("should report invalid records by index", func(t *testing.T) {
		// given
		router, repo := setupRouter(t)

		// when
		rr := serve(router, "POST", "/api/event/import",
			`[{"name":"Fine","amount":1,"date":"2024-02-01","kind":"income"},{"name":"Bad","amount":1,"date":"2024-02-01","kind":"gift"}]`)

		// then
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"1 invalid records","records":{"1":{"kind":"kind must be income or expense"}}}`, rr.Body.String())
		assert.Equal(t, 0, repo.Snapshot().Len())
	})

	t.Run("should reject an invalid replace flag", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := serve(router, "POST", "/api/event/import?replace=maybe", `[]`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
