package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/event_bus"
)

type Service interface {
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	CreateEvent(ctx context.Context, candidate Candidate) (Event, error)
	UpdateEvent(ctx context.Context, id string, candidate Candidate) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ImportEvents(ctx context.Context, candidates []Candidate, replace bool) (int, error)
}

// ImportErrors holds the validation errors of an import, keyed by the
// position of the record in the submitted list.
type ImportErrors map[int]FieldErrors

func (ie ImportErrors) Error() string {
	indexes := make([]int, 0, len(ie))
	for idx := range ie {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	parts := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		parts = append(parts, fmt.Sprintf("record %d: %v", idx, ie[idx]))
	}
	return "import rejected: " + strings.Join(parts, ", ")
}

type ServiceImpl struct {
	repo               Repository
	validator          *Validator
	eventBus           *event_bus.EventBus
	maxAttachmentBytes int
	newId              func() string
}

func NewService(repo Repository, validator *Validator, eventBus *event_bus.EventBus, maxAttachmentBytes int) *ServiceImpl {
	if validator == nil {
		validator = defaultValidator
	}
	return &ServiceImpl{
		repo:               repo,
		validator:          validator,
		eventBus:           eventBus,
		maxAttachmentBytes: maxAttachmentBytes,
		newId:              uuid.NewString,
	}
}

func (s *ServiceImpl) ListEvents(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) GetEvent(ctx context.Context, id string) (Event, error) {
	return s.repo.Get(ctx, id)
}

// CreateEvent always assigns a fresh id, whatever the candidate carries.
func (s *ServiceImpl) CreateEvent(ctx context.Context, candidate Candidate) (Event, error) {
	candidate.Id = s.newId()
	event, err := s.validate(candidate)
	if err != nil {
		return Event{}, err
	}

	if err := s.repo.Store(ctx, event); err != nil {
		return Event{}, err
	}
	log.Debugf("created event %s", event.Id)

	s.publish(ctx, event_bus.WalletEventCreated, changedPayload(event))
	return event, nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, id string, candidate Candidate) (Event, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Event{}, err
	}

	candidate.Id = id
	event, err := s.validate(candidate)
	if err != nil {
		return Event{}, err
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return Event{}, err
	}
	log.Debugf("updated event %s", event.Id)

	s.publish(ctx, event_bus.WalletEventUpdated, changedPayload(event))
	return event, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Debugf("deleted event %s", id)

	s.publish(ctx, event_bus.WalletEventDeleted, event_bus.WalletEventRemoved{Id: id})
	return nil
}

// ImportEvents validates every candidate before storing anything. Records
// without an id get a new one. When replace is set the stored list is
// swapped for the imported one, otherwise the records are appended.
func (s *ServiceImpl) ImportEvents(ctx context.Context, candidates []Candidate, replace bool) (int, error) {
	existing := map[string]bool{}
	if !replace {
		stored, err := s.repo.List(ctx)
		if err != nil {
			return 0, err
		}
		for _, event := range stored {
			existing[event.Id] = true
		}
	}

	importErrors := ImportErrors{}
	events := make([]Event, 0, len(candidates))
	for idx, candidate := range candidates {
		if candidate.Id == "" {
			candidate.Id = s.newId()
		}
		event, err := s.validate(candidate)
		if err != nil {
			var fieldErrors FieldErrors
			if errors.As(err, &fieldErrors) {
				importErrors[idx] = fieldErrors
				continue
			}
			return 0, err
		}
		if existing[event.Id] {
			importErrors[idx] = FieldErrors{FieldId: "id already exists"}
			continue
		}
		existing[event.Id] = true
		events = append(events, event)
	}
	if len(importErrors) > 0 {
		return 0, importErrors
	}

	var err error
	if replace {
		err = s.repo.ReplaceAll(ctx, events)
	} else {
		err = s.repo.StoreAll(ctx, events)
	}
	if err != nil {
		return 0, err
	}
	log.Infof("imported %d events (replace=%t)", len(events), replace)

	s.publish(ctx, event_bus.WalletEventsImport, event_bus.WalletEventsImported{Count: len(events), Replaced: replace})
	return len(events), nil
}

// validate reports attachment problems together with the other field errors.
func (s *ServiceImpl) validate(candidate Candidate) (Event, error) {
	event, fieldErrors := s.validator.Validate(candidate)
	if err := checkAttachment(candidate.Attachment, s.maxAttachmentBytes); err != nil {
		if fieldErrors == nil {
			fieldErrors = FieldErrors{}
		}
		if errors.Is(err, ErrAttachmentTooLarge) {
			fieldErrors[FieldAttachment] = fmt.Sprintf("attachment must be smaller than %d bytes", s.maxAttachmentBytes)
		} else {
			fieldErrors[FieldAttachment] = ErrAttachmentNotDataURI.Error()
		}
	}
	if len(fieldErrors) > 0 {
		return Event{}, fieldErrors
	}
	return event, nil
}

// publish never fails the caller: the change has already been stored. It is
// detached from the request's cancellation so a client hanging up after the
// write does not drop the notification.
func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, payload any) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), eventType, payload)); err != nil {
		log.Errorf("failed to publish %s: %v", eventType, err)
	}
}

func changedPayload(event Event) event_bus.WalletEventChanged {
	return event_bus.WalletEventChanged{
		Id:     event.Id,
		Name:   event.Name,
		Amount: event.Amount.String(),
		Date:   event.Date.String(),
		Kind:   string(event.Kind),
	}
}
