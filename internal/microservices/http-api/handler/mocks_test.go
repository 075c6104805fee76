package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/service"
	"eventhub/internal/middleware/auth"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testCookie  = "event_auth_token"
	eventID     = "6f1c7f57-4a43-4c53-9f0c-6c1f3b7a2e10"
	userID      = "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"
	adminID     = "0c6a2d68-4d5c-4d8e-8a2c-2c0f6b1a9e77"
	notifyID    = "9a7f5c1e-3b2d-4e6f-8a9b-0c1d2e3f4a5b"
	adminToken  = "admin-token"
	memberToken = "member-token"
)

var (
	testAdmin  = &models.User{ID: adminID, Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, Status: models.UserStatusActive}
	testMember = &models.User{ID: userID, Name: "Member", Email: "member@example.com", Role: models.RoleUser, Status: models.UserStatusActive}
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.User, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

// Authenticate resolves the two fixed test tokens without touching the mock.
func (m *MockAuthService) Authenticate(_ context.Context, token string) (*models.User, *auth.Claims, error) {
	switch token {
	case adminToken:
		return testAdmin, &auth.Claims{UserID: adminID, Role: models.RoleAdmin}, nil
	case memberToken:
		return testMember, &auth.Claims{UserID: userID, Role: models.RoleUser}, nil
	case "":
		return nil, nil, service.ErrNoToken
	default:
		return nil, nil, service.ErrInvalidToken
	}
}

func (m *MockAuthService) TokenTTL() time.Duration {
	return 7 * 24 * time.Hour
}

type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) List(ctx context.Context, query dto.ListEventsQuery) (*dto.EventList, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.EventList), args.Error(1)
}

func (m *MockEventService) Get(ctx context.Context, id string) (*models.EventSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventSummary), args.Error(1)
}

func (m *MockEventService) Create(ctx context.Context, caller *models.User, req dto.CreateEventRequest) (*models.Event, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) Update(ctx context.Context, caller *models.User, id string, req dto.UpdateEventRequest) (*dto.UpdateResult, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UpdateResult), args.Error(1)
}

func (m *MockEventService) AdminUpdate(ctx context.Context, caller *models.User, id string, req dto.UpdateEventRequest) (*dto.UpdateResult, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UpdateResult), args.Error(1)
}

func (m *MockEventService) Delete(ctx context.Context, caller *models.User, id string) (*dto.DeleteResult, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DeleteResult), args.Error(1)
}

func (m *MockEventService) ChangeStatus(ctx context.Context, caller *models.User, id string, req dto.StatusRequest) (*dto.StatusChangeResult, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StatusChangeResult), args.Error(1)
}

func (m *MockEventService) AdminGet(ctx context.Context, caller *models.User, id string) (*dto.AdminEventView, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AdminEventView), args.Error(1)
}

func (m *MockEventService) ListOwned(ctx context.Context, caller *models.User) ([]models.EventSummary, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventSummary), args.Error(1)
}

func (m *MockEventService) GetOwned(ctx context.Context, caller *models.User, id string) (*models.EventSummary, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventSummary), args.Error(1)
}

func (m *MockEventService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	args := m.Called(ctx, window)
	return args.Int(0), args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Subscribe(ctx context.Context, caller *models.User, eventID string) error {
	return m.Called(ctx, caller, eventID).Error(0)
}

func (m *MockSubscriptionService) Unsubscribe(ctx context.Context, caller *models.User, eventID string) error {
	return m.Called(ctx, caller, eventID).Error(0)
}

func (m *MockSubscriptionService) ListSubscriptions(ctx context.Context, caller *models.User) ([]dto.SubscribedEvent, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.SubscribedEvent), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Profile(ctx context.Context, caller *models.User) (*dto.Profile, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Profile), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, caller *models.User, req dto.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Stats(ctx context.Context, caller *models.User) (*dto.UserStats, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserStats), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, caller *models.User, query dto.ListUsersQuery) (*dto.UserList, error) {
	args := m.Called(ctx, caller, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserList), args.Error(1)
}

func (m *MockAdminService) GetUser(ctx context.Context, caller *models.User, id string) (*models.User, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAdminService) UpdateUser(ctx context.Context, caller *models.User, id string, req dto.AdminUpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAdminService) ChangeRole(ctx context.Context, caller *models.User, id string, req dto.RoleRequest) (*dto.RoleChangeResult, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RoleChangeResult), args.Error(1)
}

func (m *MockAdminService) ChangeStatus(ctx context.Context, caller *models.User, id string, req dto.UserStatusRequest) (*dto.UserStatusChangeResult, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserStatusChangeResult), args.Error(1)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, caller *models.User, id string) (*dto.UserDeleteResult, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserDeleteResult), args.Error(1)
}

func (m *MockAdminService) Stats(ctx context.Context, caller *models.User) (*dto.AdminStats, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AdminStats), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, caller *models.User, query dto.ListNotificationsQuery) (*dto.NotificationList, error) {
	args := m.Called(ctx, caller, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.NotificationList), args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, caller *models.User, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, caller *models.User) (int64, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(int64), args.Error(1)
}

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, caller *models.User, kind string, data []byte) (*dto.UploadResult, error) {
	args := m.Called(ctx, caller, kind, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UploadResult), args.Error(1)
}

func (m *MockUploadService) Delete(ctx context.Context, caller *models.User, req dto.DeleteImageRequest) error {
	return m.Called(ctx, caller, req).Error(0)
}

type testAPI struct {
	router        *gin.Engine
	auth          *MockAuthService
	events        *MockEventService
	subscriptions *MockSubscriptionService
	users         *MockUserService
	admin         *MockAdminService
	notifications *MockNotificationService
	uploads       *MockUploadService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &testAPI{
		auth:          new(MockAuthService),
		events:        new(MockEventService),
		subscriptions: new(MockSubscriptionService),
		users:         new(MockUserService),
		admin:         new(MockAdminService),
		notifications: new(MockNotificationService),
		uploads:       new(MockUploadService),
	}
	api.router = NewRouter(RouterConfig{
		Log:           zerolog.Nop(),
		CookieName:    testCookie,
		Authenticator: api.auth,
		Auth:          NewAuthHandler(api.auth, testCookie, false),
		Events:        NewEventHandler(api.events, api.subscriptions),
		Users:         NewUserHandler(api.users, api.events, api.subscriptions),
		Admin:         NewAdminHandler(api.admin, api.events),
		Notifications: NewNotificationHandler(api.notifications),
		Uploads:       NewUploadHandler(api.uploads, 5<<20),
	})

	t.Cleanup(func() {
		api.auth.AssertExpectations(t)
		api.events.AssertExpectations(t)
		api.subscriptions.AssertExpectations(t)
		api.users.AssertExpectations(t)
		api.admin.AssertExpectations(t)
		api.notifications.AssertExpectations(t)
		api.uploads.AssertExpectations(t)
	})
	return api
}

// do sends a JSON request. token may be empty for anonymous calls.
func (api *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func (api *testAPI) send(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
