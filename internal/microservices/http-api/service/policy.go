package service

import "eventhub/internal/microservices/http-api/models"

type Action string

const (
	ActionEventUpdate    Action = "event:update"
	ActionEventDelete    Action = "event:delete"
	ActionEventSetStatus Action = "event:set-status"
	ActionEventActivate  Action = "event:activate"
	ActionEventModerate  Action = "event:moderate"
	ActionUserManage     Action = "user:manage"
	ActionImageDelete    Action = "image:delete"
)

// ownerActions are the actions a resource's owner may take on it.
var ownerActions = map[Action]bool{
	ActionEventUpdate:    true,
	ActionEventDelete:    true,
	ActionEventSetStatus: true,
	ActionImageDelete:    true,
}

// Authorize decides whether caller may perform action on a resource owned by ownerID.
// Admins may do everything. Owners get the ownerActions on their own events and images and
// nothing that is reserved for moderation.
func Authorize(caller *models.User, ownerID string, action Action) error {
	if caller == nil {
		return ErrNoToken
	}
	if caller.IsAdmin() {
		return nil
	}
	if ownerActions[action] {
		if ownerID != "" && ownerID == caller.ID {
			return nil
		}
		return ErrPermissionDenied
	}
	return ErrInsufficientPermissions
}
