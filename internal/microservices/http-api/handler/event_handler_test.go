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

func sampleSummary() models.EventSummary {
	return models.EventSummary{
		Event: models.Event{
			ID:        eventID,
			Title:     "Go Meetup",
			Date:      "2030-06-01",
			Time:      "18:00",
			Location:  "Berlin",
			Category:  "technology",
			Status:    models.EventStatusActive,
			CreatedBy: userID,
		},
		SubscriberCount: 3,
		Creator:         models.Creator{Name: "Member", Email: "member@example.com"},
	}
}

func TestListEvents_PassesQuery(t *testing.T) {
	api := newTestAPI(t)
	query := dto.ListEventsQuery{Page: 2, Limit: 5, Category: "technology", Search: "go"}
	api.events.On("List", mock.Anything, query).Return(&dto.EventList{
		Events:     []models.EventSummary{sampleSummary()},
		Pagination: dto.NewPagination(2, 5, 6),
	}, nil)

	w := api.do(http.MethodGet, "/events?page=2&limit=5&category=technology&search=go", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	events := body["events"].([]any)
	assert.Len(t, events, 1)
	first := events[0].(map[string]any)
	assert.Equal(t, "Go Meetup", first["title"])
	assert.Equal(t, float64(3), first["subscriberCount"])
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["pages"])
}

func TestListEvents_BadQuery(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/events?page=abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEvent(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		api := newTestAPI(t)
		summary := sampleSummary()
		api.events.On("Get", mock.Anything, eventID).Return(&summary, nil)

		w := api.do(http.MethodGet, "/events/"+eventID, "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		event := decode(t, w)["event"].(map[string]any)
		assert.Equal(t, eventID, event["id"])
	})

	t.Run("not found", func(t *testing.T) {
		api := newTestAPI(t)
		api.events.On("Get", mock.Anything, eventID).Return(nil, service.ErrEventNotFound)

		w := api.do(http.MethodGet, "/events/"+eventID, "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Event not found", decode(t, w)["message"])
	})

	t.Run("invalid id", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(http.MethodGet, "/events/123", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid event ID", decode(t, w)["message"])
	})
}

func TestCreateEvent(t *testing.T) {
	api := newTestAPI(t)
	req := dto.CreateEventRequest{
		Title: "Go Meetup", Description: "Talks", Date: "2030-06-01", Time: "18:00",
		Location: "Berlin", Category: "technology",
	}
	created := sampleSummary().Event
	created.Status = models.EventStatusPending
	api.events.On("Create", mock.Anything, testMember, req).Return(&created, nil)

	w := api.do(http.MethodPost, "/events", memberToken, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Event created successfully", body["message"])
	assert.Equal(t, "pending", body["event"].(map[string]any)["status"])
}

func TestCreateEvent_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/events", "", dto.CreateEventRequest{Title: "x"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateEvent(t *testing.T) {
	title := "Renamed"
	req := dto.UpdateEventRequest{Title: &title}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"success", nil, http.StatusOK, "Event updated successfully"},
		{"not owner", service.ErrPermissionDenied, http.StatusForbidden, "Permission denied"},
		{"bad status", service.ErrStatusNotAllowed, http.StatusBadRequest, "You cannot set this status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			if tt.err != nil {
				api.events.On("Update", mock.Anything, testMember, eventID, req).Return(nil, tt.err)
			} else {
				api.events.On("Update", mock.Anything, testMember, eventID, req).
					Return(&dto.UpdateResult{EventID: eventID, NotificationsCreated: 2}, nil)
			}

			w := api.do(http.MethodPut, "/events/"+eventID, memberToken, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w)["message"])
		})
	}
}

func TestDeleteEvent(t *testing.T) {
	api := newTestAPI(t)
	api.events.On("Delete", mock.Anything, testMember, eventID).
		Return(&dto.DeleteResult{EventID: eventID, EventTitle: "Go Meetup", SubscribersNotified: 3}, nil)

	w := api.do(http.MethodDelete, "/events/"+eventID, memberToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(3), data["subscribersNotified"])
}

func TestSubscribe(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := newTestAPI(t)
		api.subscriptions.On("Subscribe", mock.Anything, testMember, eventID).Return(nil)

		w := api.do(http.MethodPost, "/events/"+eventID+"/subscribe", memberToken, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Successfully subscribed to event", decode(t, w)["message"])
	})

	t.Run("duplicate", func(t *testing.T) {
		api := newTestAPI(t)
		api.subscriptions.On("Subscribe", mock.Anything, testMember, eventID).Return(service.ErrAlreadySubscribed)

		w := api.do(http.MethodPost, "/events/"+eventID+"/subscribe", memberToken, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Already subscribed to this event", decode(t, w)["message"])
	})

	t.Run("invalid id", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(http.MethodPost, "/events/nope/subscribe", memberToken, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUnsubscribe_NotSubscribed(t *testing.T) {
	api := newTestAPI(t)
	api.subscriptions.On("Unsubscribe", mock.Anything, testMember, eventID).Return(service.ErrSubscriptionNotFound)

	w := api.do(http.MethodDelete, "/events/"+eventID+"/subscribe", memberToken, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Subscription not found", decode(t, w)["message"])
}
