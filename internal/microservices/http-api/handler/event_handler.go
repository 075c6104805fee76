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

type EventHandler struct {
	eventService        service.EventService
	subscriptionService service.SubscriptionService
}

func NewEventHandler(eventService service.EventService, subscriptionService service.SubscriptionService) *EventHandler {
	return &EventHandler{eventService: eventService, subscriptionService: subscriptionService}
}

// RegisterRoutes mounts /events. Reads are public.
func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", requireAuth, h.Create)
	rg.PUT("/:id", requireAuth, h.Update)
	rg.DELETE("/:id", requireAuth, h.Delete)
	rg.POST("/:id/subscribe", requireAuth, h.Subscribe)
	rg.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
}

func (h *EventHandler) List(c *gin.Context) {
	var query dto.ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.eventService.List(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"events": list.Events, "pagination": list.Pagination})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	event, err := h.eventService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"event": event})
}

func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	event, err := h.eventService.Create(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Event created successfully", gin.H{"event": event})
}

func (h *EventHandler) Update(c *gin.Context) {
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

	result, err := h.eventService.Update(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Event updated successfully", gin.H{"data": result})
}

func (h *EventHandler) Delete(c *gin.Context) {
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

func (h *EventHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.subscriptionService.Subscribe(ctx, middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Successfully subscribed to event", nil)
}

func (h *EventHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.subscriptionService.Unsubscribe(ctx, middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Successfully unsubscribed from event", nil)
}
