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

func TestListNotifications(t *testing.T) {
	api := newTestAPI(t)
	query := dto.ListNotificationsQuery{Page: 1, Limit: 20, UnreadOnly: true}
	api.notifications.On("List", mock.Anything, testMember, query).Return(&dto.NotificationList{
		Notifications: []models.Notification{{ID: notifyID, UserID: userID, Title: "Event Updated", Type: models.NotificationEventUpdate}},
		UnreadCount:   1,
		Pagination:    dto.NewPagination(1, 20, 1),
	}, nil)

	w := api.do(http.MethodGet, "/notifications?page=1&limit=20&unreadOnly=true", memberToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["notifications"], 1)
	assert.Equal(t, float64(1), body["unreadCount"])
	assert.Contains(t, body, "pagination")
}

func TestMarkNotificationAsRead(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := newTestAPI(t)
		api.notifications.On("MarkAsRead", mock.Anything, testMember, notifyID).Return(nil)

		w := api.do(http.MethodPatch, "/notifications/"+notifyID+"/read", memberToken, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Notification marked as read", decode(t, w)["message"])
	})

	t.Run("someone else's", func(t *testing.T) {
		api := newTestAPI(t)
		api.notifications.On("MarkAsRead", mock.Anything, testMember, notifyID).Return(service.ErrNotificationNotFound)

		w := api.do(http.MethodPatch, "/notifications/"+notifyID+"/read", memberToken, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(http.MethodPatch, "/notifications/abc/read", memberToken, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid notification ID", decode(t, w)["message"])
	})
}

func TestMarkAllNotificationsAsRead(t *testing.T) {
	api := newTestAPI(t)
	api.notifications.On("MarkAllAsRead", mock.Anything, testMember).Return(int64(3), nil)

	w := api.do(http.MethodPatch, "/notifications/read-all", memberToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["updated"])
}
