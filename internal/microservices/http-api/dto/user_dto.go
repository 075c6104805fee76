package dto

// UpdateProfileRequest: payload for PUT /user/profile
type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar          *string `json:"avatar,omitempty"`
	CurrentPassword string  `json:"currentPassword,omitempty"`
	NewPassword     string  `json:"newPassword,omitempty"`
}

type ProfileStats struct {
	EventsCreated    int64 `json:"eventsCreated"`
	EventsSubscribed int64 `json:"eventsSubscribed"`
}

type Profile struct {
	UserSummary
	Stats ProfileStats `json:"stats"`
}

type UserStats struct {
	MyEvents         int64 `json:"myEvents"`
	SubscribedEvents int64 `json:"subscribedEvents"`
	UpcomingEvents   int64 `json:"upcomingEvents"`
}
