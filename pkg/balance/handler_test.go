package balance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walletfy/walletfy/pkg/event"
)

type stubEventLister struct {
	events []event.Event
	err    error
}

func (s stubEventLister) ListEvents(ctx context.Context) ([]event.Event, error) {
	return s.events, s.err
}

func setupRouter(t *testing.T, lister EventLister) *mux.Router {
	handler := NewBalanceHandler(NewService(lister), NewCsvRenderer())
	router := mux.NewRouter()
	router.HandleFunc("/api/balance", handler.GetMonthlyGroups).Methods("GET")
	router.HandleFunc("/api/balance/summary", handler.GetSummary).Methods("GET")
	router.HandleFunc("/api/balance/{year:[0-9]+}/{month}", handler.GetMonth).Methods("GET")
	return router
}

func get(router http.Handler, target, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func sampleEvents(t *testing.T) []event.Event {
	return buildEvents(t,
		testRecord{"income", "1000", "2024-12-01"},
		testRecord{"expense", "300", "2024-12-15"},
		testRecord{"income", "500", "2025-01-02"},
	)
}

func TestHandler_GetMonthlyGroups(t *testing.T) {
	t.Run("should return groups as json", func(t *testing.T) {
		// given
		router := setupRouter(t, stubEventLister{events: sampleEvents(t)})

		// when
		rr := get(router, "/api/balance?search=dec", "")

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[{
			"month":"December","year":2024,
			"events":[
				{"id":"e1","name":"event 1","amount":1000,"date":"2024-12-01","kind":"income"},
				{"id":"e2","name":"event 2","amount":300,"date":"2024-12-15","kind":"expense"}
			],
			"totalIncome":1000,"totalExpense":300,"balance":700
		}]`, rr.Body.String())
	})

	t.Run("should return an empty array when nothing is recorded", func(t *testing.T) {
		router := setupRouter(t, stubEventLister{})

		rr := get(router, "/api/balance", "")

		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("should render csv on request", func(t *testing.T) {
		// given
		router := setupRouter(t, stubEventLister{events: sampleEvents(t)})

		// when
		rr := get(router, "/api/balance", "text/csv")

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "January,2025,1,500.00,0.00,500.00\n")
	})

	t.Run("should fail when events cannot be read", func(t *testing.T) {
		router := setupRouter(t, stubEventLister{err: errors.New("disk on fire")})

		rr := get(router, "/api/balance", "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestHandler_GetSummary(t *testing.T) {
	router := setupRouter(t, stubEventLister{events: sampleEvents(t)})

	rr := get(router, "/api/balance/summary", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"totalIncome":1500,"totalExpense":300,"balance":1200,"eventCount":3}`, rr.Body.String())
}

func TestHandler_GetMonth(t *testing.T) {
	router := setupRouter(t, stubEventLister{events: sampleEvents(t)})

	t.Run("should return a single month", func(t *testing.T) {
		rr := get(router, "/api/balance/2025/1", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"month":"January"`)
	})

	t.Run("should return 404 for a month without events", func(t *testing.T) {
		rr := get(router, "/api/balance/2025/2", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("should reject an invalid month", func(t *testing.T) {
		rr := get(router, "/api/balance/2025/13", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
