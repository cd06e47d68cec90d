package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rsvphub/internal/model"
	"rsvphub/internal/service"
	"rsvphub/pkg/response"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	CommunityID uuid.UUID `json:"communityId" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Date        string    `json:"date" binding:"required"`
	Time        string    `json:"time" binding:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// Create handles POST /api/events. Only the community's admin may create.
func (h *EventHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	event := &model.Event{
		CommunityID: req.CommunityID,
		Name:        req.Name,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
		CreatedBy:   userID,
	}
	created, err := h.eventService.Create(c.Request.Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "only community admins can create events")
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "community not found")
		default:
			response.InternalError(c, "failed to create event")
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}
