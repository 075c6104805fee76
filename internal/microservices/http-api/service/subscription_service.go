package service

import (
	"context"
	"errors"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"

	"github.com/rs/zerolog"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, caller *models.User, eventID string) error
	Unsubscribe(ctx context.Context, caller *models.User, eventID string) error
	ListSubscriptions(ctx context.Context, caller *models.User) ([]dto.SubscribedEvent, error)
}

type subscriptionService struct {
	store    repository.Store
	notifier *Notifier
	log      zerolog.Logger
}

func NewSubscriptionService(store repository.Store, notifier *Notifier, log zerolog.Logger) SubscriptionService {
	return &subscriptionService{store: store, notifier: notifier, log: log}
}

// Subscribe records the subscription and tells the organizer in the same transaction.
func (s *subscriptionService) Subscribe(ctx context.Context, caller *models.User, eventID string) error {
	var sent []models.Notification
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		event, err := tx.Events().FindByID(ctx, eventID)
		if err != nil {
			return eventLookupError(err)
		}

		exists, err := tx.Subscriptions().Exists(ctx, caller.ID, eventID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadySubscribed
		}

		sub := &models.Subscription{UserID: caller.ID, EventID: eventID}
		if err := tx.Subscriptions().Create(ctx, sub); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadySubscribed
			}
			return err
		}

		notes := []models.Notification{newSubscriberNotification(event, caller)}
		if err := s.notifier.Stage(ctx, tx, notes); err != nil {
			return err
		}
		sent = notes
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, sent)
	s.log.Debug().Str("event_id", eventID).Str("user_id", caller.ID).Msg("subscribed")
	return nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, caller *models.User, eventID string) error {
	deleted, err := s.store.Subscriptions().Delete(ctx, caller.ID, eventID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrSubscriptionNotFound
	}
	s.log.Debug().Str("event_id", eventID).Str("user_id", caller.ID).Msg("unsubscribed")
	return nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, caller *models.User) ([]dto.SubscribedEvent, error) {
	subs, err := s.store.Subscriptions().ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubscribedEvent, 0, len(subs))
	if len(subs) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.EventID)
	}
	events, err := s.store.Events().SummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.EventSummary, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}

	for _, sub := range subs {
		ev, ok := byID[sub.EventID]
		if !ok {
			continue
		}
		out = append(out, dto.SubscribedEvent{ID: sub.ID, CreatedAt: sub.CreatedAt, Event: ev})
	}
	return out, nil
}
