package settings

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/event_bus"
)

type Service interface {
	GetTheme(ctx context.Context) (Theme, error)
	SetTheme(ctx context.Context, theme Theme) (Theme, error)
	ToggleTheme(ctx context.Context) (Theme, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) GetTheme(ctx context.Context) (Theme, error) {
	return s.repo.GetTheme(ctx)
}

func (s *ServiceImpl) SetTheme(ctx context.Context, theme Theme) (Theme, error) {
	if _, err := ParseTheme(string(theme)); err != nil {
		return "", err
	}
	current, err := s.repo.GetTheme(ctx)
	if err != nil {
		return "", err
	}
	if err := s.repo.SaveTheme(ctx, theme); err != nil {
		return "", err
	}
	if current != theme {
		s.publish(ctx, theme)
	}
	return theme, nil
}

func (s *ServiceImpl) ToggleTheme(ctx context.Context) (Theme, error) {
	current, err := s.repo.GetTheme(ctx)
	if err != nil {
		return "", err
	}
	next := current.Toggled()
	if err := s.repo.SaveTheme(ctx, next); err != nil {
		return "", err
	}
	s.publish(ctx, next)
	return next, nil
}

func (s *ServiceImpl) publish(ctx context.Context, theme Theme) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.ThemeChanged, event_bus.ThemeUpdated{Theme: string(theme)}))
	if err != nil {
		log.Errorf("failed to publish theme change: %v", err)
	}
}
