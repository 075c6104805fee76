package dto

import (
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"
)

// ListUsersQuery: query string of GET /admin/users
type ListUsersQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Role   string `form:"role"`
	Status string `form:"status"`
}

type UserList struct {
	Users      []models.UserWithStats `json:"users"`
	Pagination Pagination             `json:"pagination"`
}

// AdminUpdateUserRequest: payload for PUT /admin/users/:id
type AdminUpdateUserRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Role   *string `json:"role,omitempty" validate:"omitempty,user_role"`
	Status *string `json:"status,omitempty" validate:"omitempty,user_status"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

type UserStatusRequest struct {
	Status string `json:"status" validate:"required,user_status"`
}

type RoleChangeResult struct {
	UserID          string `json:"userId"`
	PreviousRole    string `json:"previousRole"`
	Role            string `json:"role"`
	EventsActivated int64  `json:"eventsActivated"`
	Changed         bool   `json:"changed"`
}

type UserStatusChangeResult struct {
	UserID         string `json:"userId"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
	EventsAffected int64  `json:"eventsAffected"`
	Changed        bool   `json:"changed"`
}

type UserDeleteResult struct {
	UserID              string `json:"userId"`
	EventsDeleted       int    `json:"eventsDeleted"`
	SubscribersNotified int    `json:"subscribersNotified"`
}

type KeyCount struct {
	Key   string `json:"_id"`
	Count int64  `json:"count"`
}

type AdminStats struct {
	TotalUsers         int64                    `json:"totalUsers"`
	TotalEvents        int64                    `json:"totalEvents"`
	TotalSubscriptions int64                    `json:"totalSubscriptions"`
	ActiveEvents       int64                    `json:"activeEvents"`
	EventsByStatus     []KeyCount               `json:"eventsByStatus"`
	EventsByCategory   []KeyCount               `json:"eventsByCategory"`
	UserGrowth         []repository.GrowthPoint `json:"userGrowth"`
}
