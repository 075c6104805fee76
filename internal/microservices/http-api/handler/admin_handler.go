package handler

import (
	"context"
	"net/http"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/middleware"
	"eventhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService service.AdminService
	eventService service.EventService
}

func NewAdminHandler(adminService service.AdminService, eventService service.EventService) *AdminHandler {
	return &AdminHandler{adminService: adminService, eventService: eventService}
}

// RegisterRoutes expects rg to be guarded by the auth and admin middleware.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.PATCH("/:id/role", h.ChangeRole)
		users.PATCH("/:id/status", h.ChangeUserStatus)
	}

	events := rg.Group("/events")
	{
		events.GET("/:id", h.GetEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.DELETE("/:id", h.DeleteEvent)
		events.PATCH("/:id/status", h.ChangeEventStatus)
	}

	rg.GET("/stats", h.Stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query dto.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.adminService.ListUsers(ctx, middleware.CurrentUser(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"users": list.Users, "pagination": list.Pagination})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.adminService.GetUser(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": dto.NewUserSummary(user)})
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	var req dto.AdminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.adminService.UpdateUser(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated successfully", gin.H{"user": dto.NewUserSummary(user)})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := h.adminService.DeleteUser(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User deleted successfully", gin.H{"data": result})
}

func (h *AdminHandler) ChangeRole(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	var req dto.RoleRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.adminService.ChangeRole(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User role updated successfully", gin.H{"data": result})
}

func (h *AdminHandler) ChangeUserStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	var req dto.UserStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.adminService.ChangeStatus(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User status updated successfully", gin.H{"data": result})
}

func (h *AdminHandler) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	view, err := h.eventService.AdminGet(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"event": view})
}

func (h *AdminHandler) UpdateEvent(c *gin.Context) {
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.eventService.AdminUpdate(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Event updated successfully", gin.H{"data": result})
}

func (h *AdminHandler) DeleteEvent(c *gin.Context) {
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.eventService.Delete(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Event deleted successfully", gin.H{"data": result})
}

func (h *AdminHandler) ChangeEventStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.eventService.ChangeStatus(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Event status updated successfully", gin.H{"data": result})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.adminService.Stats(ctx, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"stats": stats})
}
