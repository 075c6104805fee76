package repository

import (
	"context"
	"fmt"

	"eventhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	Delete(ctx context.Context, userID, eventID string) (int64, error)
	SubscriberIDs(ctx context.Context, eventID string) ([]string, error)
	ListSubscribers(ctx context.Context, eventID string) ([]models.Subscriber, error)
	ListByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	DeleteByEvents(ctx context.Context, eventIDs ...string) error
	DeleteByUser(ctx context.Context, userID string) error
	Count(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create returns ErrDuplicate when the user already follows the event.
func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("create subscription: %w", translate(err))
	}
	return nil
}

func (r *subscriptionRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return count > 0, nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, userID, eventID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete subscription: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *subscriptionRepository) SubscriberIDs(ctx context.Context, eventID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("event_id = ?", eventID).
		Order("created_at").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list subscribers of %s: %w", eventID, err)
	}
	return ids, nil
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context, eventID string) ([]models.Subscriber, error) {
	var subs []models.Subscriber
	err := r.db.WithContext(ctx).Table("subscriptions AS s").
		Select("u.id AS user_id, u.name, u.email, s.created_at AS subscribed_at").
		Joins("JOIN users u ON u.id = s.user_id").
		Where("s.event_id = ?", eventID).
		Order("s.created_at").
		Scan(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("list subscribers of %s: %w", eventID, err)
	}
	return subs, nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("list subscriptions of %s: %w", userID, err)
	}
	return subs, nil
}

func (r *subscriptionRepository) DeleteByEvents(ctx context.Context, eventIDs ...string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("event_id IN ?", eventIDs).Delete(&models.Subscription{}).Error; err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Subscription{}).Error; err != nil {
		return fmt.Errorf("delete subscriptions of %s: %w", userID, err)
	}
	return nil
}

func (r *subscriptionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return count, nil
}

func (r *subscriptionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count subscriptions of %s: %w", userID, err)
	}
	return count, nil
}
