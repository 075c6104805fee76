package handler

import (
	"net/http"
	"testing"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetProfile(t *testing.T) {
	api := newTestAPI(t)
	api.users.On("Profile", mock.Anything, testMember).Return(&dto.Profile{
		UserSummary: dto.NewUserSummary(testMember),
		Stats:       dto.ProfileStats{EventsCreated: 2, EventsSubscribed: 5},
	}, nil)

	w := api.do(http.MethodGet, "/user/profile", memberToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "Member", user["name"])
	stats := user["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["eventsCreated"])
	assert.Equal(t, float64(5), stats["eventsSubscribed"])
}

func TestUpdateProfile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := newTestAPI(t)
		name := "Renamed"
		req := dto.UpdateProfileRequest{Name: &name}
		updated := *testMember
		updated.Name = name
		api.users.On("UpdateProfile", mock.Anything, testMember, req).Return(&updated, nil)

		w := api.do(http.MethodPut, "/user/profile", memberToken, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Profile updated successfully", body["message"])
		assert.Equal(t, "Renamed", body["user"].(map[string]any)["name"])
	})

	t.Run("wrong password", func(t *testing.T) {
		api := newTestAPI(t)
		req := dto.UpdateProfileRequest{CurrentPassword: "nope", NewPassword: "secret2"}
		api.users.On("UpdateProfile", mock.Anything, testMember, req).Return(nil, service.ErrWrongPassword)

		w := api.do(http.MethodPut, "/user/profile", memberToken, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Current password is incorrect", decode(t, w)["message"])
	})
}

func TestUserEvents(t *testing.T) {
	api := newTestAPI(t)
	api.events.On("ListOwned", mock.Anything, testMember).Return([]models.EventSummary{sampleSummary()}, nil)

	w := api.do(http.MethodGet, "/user/events", memberToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["events"], 1)
}

func TestUserEvent_NotOwned(t *testing.T) {
	api := newTestAPI(t)
	api.events.On("GetOwned", mock.Anything, testMember, eventID).Return(nil, service.ErrEventNotOwned)

	w := api.do(http.MethodGet, "/user/events/"+eventID, memberToken, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Event not found or access denied", decode(t, w)["message"])
}

func TestUserSubscriptions(t *testing.T) {
	api := newTestAPI(t)
	api.subscriptions.On("ListSubscriptions", mock.Anything, testMember).Return([]dto.SubscribedEvent{
		{ID: "sub-1", Event: sampleSummary()},
	}, nil)

	w := api.do(http.MethodGet, "/user/subscriptions", memberToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	subs := decode(t, w)["subscriptions"].([]any)
	assert.Len(t, subs, 1)
	event := subs[0].(map[string]any)["event"].(map[string]any)
	assert.Equal(t, "Go Meetup", event["title"])
}

func TestUserStats(t *testing.T) {
	api := newTestAPI(t)
	api.users.On("Stats", mock.Anything, testMember).
		Return(&dto.UserStats{MyEvents: 1, SubscribedEvents: 4, UpcomingEvents: 2}, nil)

	w := api.do(http.MethodGet, "/user/stats", memberToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["upcomingEvents"])
}

func TestUserRoutes_RequireAuth(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/user/profile", "/user/events", "/user/subscriptions", "/user/stats"} {
		w := api.do(http.MethodGet, path, "bogus", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "Invalid token", decode(t, w)["message"], path)
	}
}
