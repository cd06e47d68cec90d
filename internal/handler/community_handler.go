package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rsvphub/internal/service"
	"rsvphub/pkg/response"
)

type CommunityHandler struct {
	communityService service.CommunityService
	eventService     service.EventService
}

func NewCommunityHandler(communityService service.CommunityService, eventService service.EventService) *CommunityHandler {
	return &CommunityHandler{
		communityService: communityService,
		eventService:     eventService,
	}
}

type CreateCommunityRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create handles POST /api/communities. The admin is the authenticated user.
func (h *CommunityHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	community, err := h.communityService.Create(c.Request.Context(), req.Name, req.Description, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "only admin users can create communities")
		case errors.Is(err, service.ErrCodeTaken):
			response.Conflict(c, "community code collision")
		default:
			response.InternalError(c, "failed to create community")
		}
		return
	}

	c.JSON(http.StatusCreated, community)
}

// List handles GET /api/communities.
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.communityService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list communities")
		return
	}
	c.JSON(http.StatusOK, communities)
}

// GetByCode handles GET /api/communities/:code.
func (h *CommunityHandler) GetByCode(c *gin.Context) {
	community, err := h.communityService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "community not found")
			return
		}
		response.InternalError(c, "failed to get community")
		return
	}
	c.JSON(http.StatusOK, community)
}

// Join handles POST /api/communities/:code/join, adding the authenticated
// user to the community's members.
func (h *CommunityHandler) Join(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	community, err := h.communityService.Join(c.Request.Context(), c.Param("code"), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "community not found")
			return
		}
		response.InternalError(c, "failed to join community")
		return
	}
	c.JSON(http.StatusOK, community)
}

// ListEvents handles GET /api/communities/:code/events. The path parameter
// carries the community id here; the placeholder name is shared with the
// by-code route because gin requires one name per segment.
func (h *CommunityHandler) ListEvents(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("code"))
	if err != nil {
		response.BadRequest(c, "invalid community id")
		return
	}

	events, err := h.eventService.ListForCommunity(c.Request.Context(), communityID)
	if err != nil {
		response.InternalError(c, "failed to list events")
		return
	}
	c.JSON(http.StatusOK, events)
}
