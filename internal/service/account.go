package service

import (
	"context"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// AccountService exposes per-user settings and the notification inbox.
type AccountService struct {
	store store.Store
}

func NewAccountService(st store.Store) *AccountService { return &AccountService{store: st} }

func (s *AccountService) Preferences(ctx context.Context, actor model.Actor) (model.Preferences, error) {
	return s.store.Preferences().GetPreferences(ctx, actor.ID)
}

func (s *AccountService) SavePreferences(ctx context.Context, actor model.Actor, p model.Preferences) (model.Preferences, error) {
	p.UserID = actor.ID
	if err := s.store.Preferences().SavePreferences(ctx, p); err != nil {
		return model.Preferences{}, err
	}
	return p, nil
}

// Notifications returns the newest limit notifications of the actor.
func (s *AccountService) Notifications(ctx context.Context, actor model.Actor, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.Notifications().ListNotifications(ctx, actor.ID, limit)
}
