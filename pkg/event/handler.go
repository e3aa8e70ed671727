package event

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/rest"
)

// EventDTO is the wire form of an event. Amount is decoded as a number or a
// numeric string and always encoded as a number.
type EventDTO struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Amount      any    `json:"amount"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	Attachment  string `json:"attachment,omitempty"`
}

type ImportResultDTO struct {
	Imported int  `json:"imported"`
	Replaced bool `json:"replaced"`
}

type ImportErrorDTO struct {
	Error   string                    `json:"error"`
	Records map[int]map[string]string `json:"records"`
}

const (
	// room for the JSON around an attachment
	bodyOverheadBytes = 64 * 1024
	// an import may carry this many events with full-size attachments
	maxImportAttachments = 100
)

type Handler struct {
	service      Service
	maxBodyBytes int64
}

// NewEventHandler limits request bodies to what one event with an attachment
// of maxAttachmentBytes can take.
func NewEventHandler(service Service, maxAttachmentBytes int) *Handler {
	maxBody := int64(base64.StdEncoding.EncodedLen(maxAttachmentBytes)) + bodyOverheadBytes
	return &Handler{service: service, maxBodyBytes: maxBody}
}

func EventToDTO(event Event) EventDTO {
	return EventDTO{
		Id:          event.Id,
		Name:        event.Name,
		Description: event.Description,
		Amount:      json.Number(event.Amount.String()),
		Date:        event.Date.String(),
		Kind:        string(event.Kind),
		Attachment:  event.Attachment,
	}
}

func DTOToCandidate(dto EventDTO) Candidate {
	return Candidate{
		Id:          dto.Id,
		Name:        dto.Name,
		Description: dto.Description,
		Amount:      dto.Amount,
		Date:        dto.Date,
		Kind:        dto.Kind,
		Attachment:  dto.Attachment,
	}
}

// ListEvents godoc
// @Summary List all events
// @Description Get every recorded income and expense in insertion order
// @Tags Event
// @Produce json
// @Success 200 {array} EventDTO
// @Router /api/event [get]
func (handler *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing events")
	events, err := handler.service.ListEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	eventsDTO := make([]EventDTO, 0, len(events))
	for _, event := range events {
		eventsDTO = append(eventsDTO, EventToDTO(event))
	}
	rest.WriteJSON(w, http.StatusOK, eventsDTO)
}

// GetEvent godoc
// @Summary Get a single event
// @Tags Event
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} EventDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/event/{eventId} [get]
func (handler *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	event, err := handler.service.GetEvent(r.Context(), eventId)
	if err != nil {
		handler.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(event))
}

// CreateEvent godoc
// @Summary Record a new event
// @Description The id is always generated by the server
// @Tags Event
// @Accept json
// @Produce json
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 413 {object} rest.ErrorResponse
// @Router /api/event [post]
func (handler *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new event")
	var eventDTO EventDTO
	if !decodeBody(w, r, handler.maxBodyBytes, &eventDTO) {
		return
	}

	event, err := handler.service.CreateEvent(r.Context(), DTOToCandidate(eventDTO))
	if err != nil {
		handler.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(event))
}

// UpdateEvent godoc
// @Summary Update an existing event
// @Tags Event
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param event body EventDTO true "Event"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Failure 413 {object} rest.ErrorResponse
// @Router /api/event/{eventId} [put]
func (handler *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Updating event %s", eventId)
	var eventDTO EventDTO
	if !decodeBody(w, r, handler.maxBodyBytes, &eventDTO) {
		return
	}
	if eventDTO.Id != "" && eventDTO.Id != eventId {
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error: "Invalid event id in request body",
		})
		return
	}

	event, err := handler.service.UpdateEvent(r.Context(), eventId, DTOToCandidate(eventDTO))
	if err != nil {
		handler.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(event))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Event
// @Param eventId path string true "Event ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/event/{eventId} [delete]
func (handler *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Deleting event %s", eventId)
	if err := handler.service.DeleteEvent(r.Context(), eventId); err != nil {
		handler.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAttachment godoc
// @Summary Download the attachment of an event
// @Tags Event
// @Param eventId path string true "Event ID"
// @Success 200 {file} binary
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/event/{eventId}/attachment [get]
func (handler *Handler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	event, err := handler.service.GetEvent(r.Context(), eventId)
	if err != nil {
		handler.writeServiceError(w, err)
		return
	}
	if event.Attachment == "" {
		rest.WriteError(w, http.StatusNotFound, rest.ErrorResponse{
			Error: "Event has no attachment",
		})
		return
	}
	attachment, err := ParseAttachment(event.Attachment)
	if err != nil {
		log.Errorf("event %s has an unreadable attachment: %v", eventId, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", attachment.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(attachment.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(attachment.Data); err != nil {
		log.Errorf("failed to write attachment: %v", err)
	}
}

// ImportEvents godoc
// @Summary Import a list of events
// @Description Appends the events, or replaces the stored list when replace=true. Nothing is stored if any record is invalid.
// @Tags Event
// @Accept json
// @Produce json
// @Param replace query bool false "Replace stored events"
// @Param events body []EventDTO true "Events"
// @Success 200 {object} ImportResultDTO
// @Failure 400 {object} ImportErrorDTO
// @Failure 413 {object} rest.ErrorResponse
// @Router /api/event/import [post]
func (handler *Handler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	replace := false
	if raw := r.URL.Query().Get("replace"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
				Error:   "Invalid replace parameter",
				Details: err.Error(),
			})
			return
		}
		replace = parsed
	}

	var eventsDTO []EventDTO
	if !decodeBody(w, r, handler.maxBodyBytes*maxImportAttachments, &eventsDTO) {
		return
	}

	candidates := make([]Candidate, 0, len(eventsDTO))
	for _, dto := range eventsDTO {
		candidates = append(candidates, DTOToCandidate(dto))
	}

	imported, err := handler.service.ImportEvents(r.Context(), candidates, replace)
	if err != nil {
		var importErrors ImportErrors
		if errors.As(err, &importErrors) {
			records := make(map[int]map[string]string, len(importErrors))
			for idx, fieldErrors := range importErrors {
				records[idx] = fieldErrors
			}
			rest.WriteJSON(w, http.StatusBadRequest, ImportErrorDTO{
				Error:   fmt.Sprintf("%d invalid records", len(importErrors)),
				Records: records,
			})
			return
		}
		handler.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ImportResultDTO{Imported: imported, Replaced: replace})
}

func (handler *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var fieldErrors FieldErrors
	switch {
	case errors.As(err, &fieldErrors):
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:  "Invalid event",
			Fields: fieldErrors,
		})
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, rest.ErrorResponse{
			Error: err.Error(),
		})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// decodeBody reads at most limit bytes of JSON into v and answers the request
// itself when that fails. Numbers stay json.Number so amounts are not rounded
// through float64.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	decoder.UseNumber()
	err := decoder.Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		rest.WriteError(w, http.StatusRequestEntityTooLarge, rest.ErrorResponse{
			Error:   "Request body too large",
			Details: fmt.Sprintf("limit is %d bytes", tooLarge.Limit),
		})
		return false
	}
	rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
		Error:   "Invalid request body format",
		Details: err.Error(),
	})
	return false
}
