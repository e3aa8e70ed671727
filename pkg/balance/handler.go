package balance

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/rest"
	"github.com/walletfy/walletfy/pkg/event"
)

type MonthlyGroupDTO struct {
	Month        string           `json:"month"`
	Year         int              `json:"year"`
	Events       []event.EventDTO `json:"events"`
	TotalIncome  json.Number      `json:"totalIncome"`
	TotalExpense json.Number      `json:"totalExpense"`
	Balance      json.Number      `json:"balance"`
}

type SummaryDTO struct {
	TotalIncome  json.Number `json:"totalIncome"`
	TotalExpense json.Number `json:"totalExpense"`
	Balance      json.Number `json:"balance"`
	EventCount   int         `json:"eventCount"`
}

type Handler struct {
	service  Service
	renderer Renderer
}

func NewBalanceHandler(service Service, renderer Renderer) *Handler {
	return &Handler{service, renderer}
}

func GroupToDTO(group MonthlyGroup) MonthlyGroupDTO {
	events := make([]event.EventDTO, 0, len(group.Events))
	for _, e := range group.Events {
		events = append(events, event.EventToDTO(e))
	}
	return MonthlyGroupDTO{
		Month:        group.Month,
		Year:         group.Year,
		Events:       events,
		TotalIncome:  json.Number(group.TotalIncome.String()),
		TotalExpense: json.Number(group.TotalExpense.String()),
		Balance:      json.Number(group.Balance.String()),
	}
}

func SummaryToDTO(summary Summary) SummaryDTO {
	return SummaryDTO{
		TotalIncome:  json.Number(summary.TotalIncome.String()),
		TotalExpense: json.Number(summary.TotalExpense.String()),
		Balance:      json.Number(summary.Balance.String()),
		EventCount:   summary.EventCount,
	}
}

// GetMonthlyGroups godoc
// @Summary Monthly balance
// @Description Events grouped by month, newest first, optionally filtered by a month/year search term
// @Tags Balance
// @Produce json
// @Produce text/csv
// @Param search query string false "Month or year to search for"
// @Success 200 {array} MonthlyGroupDTO
// @Router /api/balance [get]
func (handler *Handler) GetMonthlyGroups(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	log.Debugf("Getting monthly balance (search=%q)", search)
	groups, err := handler.service.GetMonthlyGroups(r.Context(), search)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		summary, err := handler.service.GetSummary(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		csv, err := handler.renderer.RenderGroups(groups, summary)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write csv: %v", err)
		}
		return
	}

	groupsDTO := make([]MonthlyGroupDTO, 0, len(groups))
	for _, group := range groups {
		groupsDTO = append(groupsDTO, GroupToDTO(group))
	}
	rest.WriteJSON(w, http.StatusOK, groupsDTO)
}

// GetSummary godoc
// @Summary Overall balance
// @Description Totals over all events, independent of any search
// @Tags Balance
// @Produce json
// @Success 200 {object} SummaryDTO
// @Router /api/balance/summary [get]
func (handler *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := handler.service.GetSummary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SummaryToDTO(summary))
}

// GetMonth godoc
// @Summary Balance of a single month
// @Tags Balance
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} MonthlyGroupDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/balance/{year}/{month} [get]
func (handler *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:   "Invalid year",
			Details: err.Error(),
		})
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:   "Invalid month",
			Details: "month must be a number between 1 and 12",
		})
		return
	}

	group, err := handler.service.GetMonth(r.Context(), year, time.Month(month))
	if err != nil {
		if errors.Is(err, ErrMonthNotFound) {
			rest.WriteError(w, http.StatusNotFound, rest.ErrorResponse{
				Error: err.Error(),
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, GroupToDTO(group))
}
