package service

import (
	"context"
	"time"

	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/mock"
)

// MockStore hands out the repository mocks and runs WithTx callbacks inline.
type MockStore struct {
	users         *MockUserRepository
	events        *MockEventRepository
	subscriptions *MockSubscriptionRepository
	notifications *MockNotificationRepository
	txCount       int
}

func newMockStore() *MockStore {
	return &MockStore{
		users:         new(MockUserRepository),
		events:        new(MockEventRepository),
		subscriptions: new(MockSubscriptionRepository),
		notifications: new(MockNotificationRepository),
	}
}

func (s *MockStore) Users() repository.UserRepository                 { return s.users }
func (s *MockStore) Events() repository.EventRepository               { return s.events }
func (s *MockStore) Subscriptions() repository.SubscriptionRepository { return s.subscriptions }
func (s *MockStore) Notifications() repository.NotificationRepository { return s.notifications }

func (s *MockStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txCount++
	return fn(s)
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]models.UserWithStats, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.UserWithStats), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountActiveAdmins(ctx context.Context, excludeID string) (int64, error) {
	args := m.Called(ctx, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GrowthSince(ctx context.Context, since time.Time) ([]repository.GrowthPoint, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.GrowthPoint), args.Error(1)
}

func (m *MockUserRepository) AvatarOwners(ctx context.Context, publicID string) ([]string, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockEventRepository mocks the EventRepository interface
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) FindSummary(ctx context.Context, id string) (*models.EventSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventSummary), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, filter repository.EventFilter) ([]models.EventSummary, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.EventSummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockEventRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.EventSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventSummary), args.Error(1)
}

func (m *MockEventRepository) SummariesByIDs(ctx context.Context, ids []string) ([]models.EventSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventSummary), args.Error(1)
}

func (m *MockEventRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Event, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) UpdateStatusByOwner(ctx context.Context, ownerID, from, to string) (int64, error) {
	args := m.Called(ctx, ownerID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockEventRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockEventRepository) ListDueForReminder(ctx context.Context, fromDate, toDate string) ([]models.Event, error) {
	args := m.Called(ctx, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventRepository) ClaimReminder(ctx context.Context, id string, at time.Time) (int64, error) {
	args := m.Called(ctx, id, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) BannerOwners(ctx context.Context, publicID string) ([]string, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSubscriptionRepository mocks the SubscriptionRepository interface
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, userID, eventID string) (int64, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepository) SubscriberIDs(ctx context.Context, eventID string) ([]string, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSubscriptionRepository) ListSubscribers(ctx context.Context, eventID string) ([]models.Subscriber, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscriber), args.Error(1)
}

func (m *MockSubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) DeleteByEvents(ctx context.Context, eventIDs ...string) error {
	args := m.Called(ctx, eventIDs)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationRepository mocks the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateMany(ctx context.Context, notifications []models.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]models.Notification, int64, error) {
	args := m.Called(ctx, userID, page, limit, unreadOnly)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id, userID string) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteByEvents(ctx context.Context, eventIDs ...string) error {
	args := m.Called(ctx, eventIDs)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// fakeCache is an in-memory UnreadCache and TokenRevoker.
type fakeCache struct {
	counts      map[string]int64
	revoked     map[string]bool
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{counts: map[string]int64{}, revoked: map[string]bool{}}
}

func (c *fakeCache) UnreadCount(ctx context.Context, userID string) (int64, bool, error) {
	n, ok := c.counts[userID]
	return n, ok, nil
}

func (c *fakeCache) SetUnreadCount(ctx context.Context, userID string, count int64) error {
	c.counts[userID] = count
	return nil
}

func (c *fakeCache) InvalidateUnread(ctx context.Context, userIDs ...string) error {
	for _, id := range userIDs {
		delete(c.counts, id)
	}
	c.invalidated = append(c.invalidated, userIDs...)
	return nil
}

func (c *fakeCache) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	c.revoked[jti] = true
	return nil
}

func (c *fakeCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return c.revoked[jti], nil
}

// fakePublisher records published notifications.
type fakePublisher struct {
	published []models.Notification
}

func (p *fakePublisher) PublishNotifications(ctx context.Context, notifications []models.Notification) error {
	p.published = append(p.published, notifications...)
	return nil
}

// fakeRemover records removed image URLs.
type fakeRemover struct {
	removed []string
}

func (r *fakeRemover) Remove(urls ...string) {
	r.removed = append(r.removed, urls...)
}

// staged returns the notifications passed to the first CreateMany call.
func staged(m *MockNotificationRepository) []models.Notification {
	for _, call := range m.Calls {
		if call.Method == "CreateMany" {
			return call.Arguments.Get(1).([]models.Notification)
		}
	}
	return nil
}

func adminUser(id string) *models.User {
	return &models.User{ID: id, Name: "Admin", Email: id + "@example.com", Role: models.RoleAdmin, Status: models.UserStatusActive}
}

func regularUser(id string) *models.User {
	return &models.User{ID: id, Name: "User " + id, Email: id + "@example.com", Role: models.RoleUser, Status: models.UserStatusActive}
}
