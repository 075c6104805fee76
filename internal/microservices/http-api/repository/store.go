package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories so that multi-table writes can share one transaction.
type Store interface {
	Users() UserRepository
	Events() EventRepository
	Subscriptions() SubscriptionRepository
	Notifications() NotificationRepository
	// WithTx runs fn inside a database transaction. The Store passed to fn is bound to it;
	// returning an error rolls everything back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *gormStore) Events() EventRepository               { return NewEventRepository(s.db) }
func (s *gormStore) Subscriptions() SubscriptionRepository { return NewSubscriptionRepository(s.db) }
func (s *gormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
