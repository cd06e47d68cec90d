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

type RSVPHandler struct {
	rsvpService service.RSVPService
}

func NewRSVPHandler(rsvpService service.RSVPService) *RSVPHandler {
	return &RSVPHandler{rsvpService: rsvpService}
}

type CreateRSVPRequest struct {
	EventID  uuid.UUID `json:"eventId" binding:"required"`
	UserName string    `json:"userName" binding:"required"`
	Code     string    `json:"code" binding:"required"`
}

// Create handles POST /api/rsvps. The owning user is the authenticated one;
// the code is generated by the issuing client and checked for uniqueness
// here.
func (h *RSVPHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	rsvp := &model.RSVP{
		EventID:  req.EventID,
		UserID:   userID,
		UserName: req.UserName,
		Code:     req.Code,
	}
	created, err := h.rsvpService.Create(c.Request.Context(), rsvp)
	if err != nil {
		if errors.Is(err, service.ErrCodeTaken) {
			response.Conflict(c, "rsvp code already in use")
			return
		}
		response.InternalError(c, "failed to create rsvp")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListForEvent handles GET /api/events/:eventId/rsvps.
func (h *RSVPHandler) ListForEvent(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	rsvps, err := h.rsvpService.ListForEvent(c.Request.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "only the community admin can view rsvps")
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "event not found")
		default:
			response.InternalError(c, "failed to list rsvps")
		}
		return
	}
	c.JSON(http.StatusOK, rsvps)
}

// GetMine handles GET /api/events/:eventId/rsvps/me: the authenticated user's
// own RSVP for the event. Unlike the aggregate listing it needs no admin
// rights, so attendees can check for an existing code before requesting one.
func (h *RSVPHandler) GetMine(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	rsvp, err := h.rsvpService.GetForEventAndUser(c.Request.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "no rsvp for this event")
			return
		}
		response.InternalError(c, "failed to get rsvp")
		return
	}
	c.JSON(http.StatusOK, rsvp)
}

// GetByCode handles GET /api/rsvps/:code, returning the RSVP joined with its
// event's name and community.
func (h *RSVPHandler) GetByCode(c *gin.Context) {
	detail, err := h.rsvpService.GetDetailByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "rsvp not found")
			return
		}
		response.InternalError(c, "failed to get rsvp")
		return
	}
	c.JSON(http.StatusOK, detail)
}

type ScanRequest struct {
	ScannedBy uuid.UUID `json:"scannedBy" binding:"required"`
}

// Scan handles PUT /api/rsvps/:code/scan: a single conditional update that
// transitions scanned false->true. The response reports whether the
// transition happened so a repeated scan is distinguishable.
func (h *RSVPHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.rsvpService.Scan(c.Request.Context(), c.Param("code"), req.ScannedBy)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "rsvp not found")
			return
		}
		response.InternalError(c, "failed to scan rsvp")
		return
	}
	c.JSON(http.StatusOK, result)
}
