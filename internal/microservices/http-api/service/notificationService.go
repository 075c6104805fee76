package service

import (
	"context"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"

	"github.com/rs/zerolog"
)

type NotificationService interface {
	List(ctx context.Context, caller *models.User, query dto.ListNotificationsQuery) (*dto.NotificationList, error)
	MarkAsRead(ctx context.Context, caller *models.User, notificationID string) error
	MarkAllAsRead(ctx context.Context, caller *models.User) (int64, error)
}

type notificationService struct {
	repo  repository.NotificationRepository
	cache UnreadCache
	log   zerolog.Logger
}

// NewNotificationService creates the service. cache may be nil.
func NewNotificationService(repo repository.NotificationRepository, cache UnreadCache, log zerolog.Logger) NotificationService {
	return &notificationService{repo: repo, cache: cache, log: log}
}

func (s *notificationService) List(ctx context.Context, caller *models.User, query dto.ListNotificationsQuery) (*dto.NotificationList, error) {
	if caller == nil {
		return nil, ErrNoToken
	}
	page, limit := repository.Page(query.Page, query.Limit, 20, 100)
	notifications, total, err := s.repo.ListByUser(ctx, caller.ID, page, limit, query.UnreadOnly)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	unread, err := s.unreadCount(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	return &dto.NotificationList{
		Notifications: notifications,
		UnreadCount:   unread,
		Pagination:    dto.NewPagination(page, limit, total),
	}, nil
}

// unreadCount reads through the cache; cache errors fall back to the database.
func (s *notificationService) unreadCount(ctx context.Context, userID string) (int64, error) {
	if s.cache != nil {
		count, ok, err := s.cache.UnreadCount(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("unread counter lookup failed")
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetUnreadCount(ctx, userID, count); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("unread counter store failed")
		}
	}
	return count, nil
}

func (s *notificationService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUnread(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate unread counter")
	}
}

func (s *notificationService) MarkAsRead(ctx context.Context, caller *models.User, notificationID string) error {
	if caller == nil {
		return ErrNoToken
	}
	// the user id filter makes other users' notifications look missing
	rows, err := s.repo.MarkAsRead(ctx, notificationID, caller.ID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	s.invalidate(ctx, caller.ID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, caller *models.User) (int64, error) {
	if caller == nil {
		return 0, ErrNoToken
	}
	rows, err := s.repo.MarkAllAsRead(ctx, caller.ID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, caller.ID)
	return rows, nil
}
