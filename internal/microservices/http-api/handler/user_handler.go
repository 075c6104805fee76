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

// UserHandler serves the signed-in user's own resources under /user.
type UserHandler struct {
	userService         service.UserService
	eventService        service.EventService
	subscriptionService service.SubscriptionService
}

func NewUserHandler(userService service.UserService, eventService service.EventService, subscriptionService service.SubscriptionService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		eventService:        eventService,
		subscriptionService: subscriptionService,
	}
}

// RegisterRoutes expects rg to be guarded by the auth middleware.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.GetProfile)
	rg.PUT("/profile", h.UpdateProfile)
	rg.GET("/events", h.ListEvents)
	rg.GET("/events/:id", h.GetEvent)
	rg.GET("/subscriptions", h.ListSubscriptions)
	rg.GET("/stats", h.Stats)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.userService.Profile(ctx, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": profile})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.UpdateProfile(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"user": dto.NewUserSummary(user)})
}

func (h *UserHandler) ListEvents(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	events, err := h.eventService.ListOwned(ctx, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"events": events})
}

func (h *UserHandler) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	event, err := h.eventService.GetOwned(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"event": event})
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	subs, err := h.subscriptionService.ListSubscriptions(ctx, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"subscriptions": subs})
}

func (h *UserHandler) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.userService.Stats(ctx, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"stats": stats})
}
