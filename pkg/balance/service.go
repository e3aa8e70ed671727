package balance

import (
	"context"
	"errors"
	"time"

	"github.com/walletfy/walletfy/pkg/event"
)

var ErrMonthNotFound = errors.New("no events in month")

// EventLister is the read side of the event store the balance views are
// computed from.
type EventLister interface {
	ListEvents(ctx context.Context) ([]event.Event, error)
}

type Service interface {
	GetMonthlyGroups(ctx context.Context, search string) ([]MonthlyGroup, error)
	GetSummary(ctx context.Context) (Summary, error)
	GetMonth(ctx context.Context, year int, month time.Month) (MonthlyGroup, error)
}

type ServiceImpl struct {
	events EventLister
}

func NewService(events EventLister) *ServiceImpl {
	return &ServiceImpl{events: events}
}

func (s *ServiceImpl) GetMonthlyGroups(ctx context.Context, search string) ([]MonthlyGroup, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return FilterBySearch(GroupByMonth(events), search), nil
}

func (s *ServiceImpl) GetSummary(ctx context.Context) (Summary, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(events), nil
}

func (s *ServiceImpl) GetMonth(ctx context.Context, year int, month time.Month) (MonthlyGroup, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return MonthlyGroup{}, err
	}
	group, ok := FindMonth(GroupByMonth(events), year, month)
	if !ok {
		return MonthlyGroup{}, ErrMonthNotFound
	}
	return group, nil
}
