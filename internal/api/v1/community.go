package v1

import (
	"net/http"

	"github.com/gatherly/gatherly/internal/api/dto"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/logger"
	"github.com/gatherly/gatherly/internal/service"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	service    service.CommunityService
	membership service.MembershipService
	log        *logger.Logger
}

func NewCommunityHandler(service service.CommunityService, membership service.MembershipService, log *logger.Logger) *CommunityHandler {
	return &CommunityHandler{service: service, membership: membership, log: log}
}

func (h *CommunityHandler) UpsertCommunity(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID := types.GetOwnerID(ctx)
	if ownerID == "" {
		c.Error(ierr.NewError("missing owner id").
			WithHint("Provide the owner id in the X-Owner-ID header").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpsertCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpsertCommunity(ctx, ownerID, &req)
	if err != nil {
		h.log.Error("Failed to upsert community", "error", err)
		c.Error(err)
		return
	}

	status := http.StatusOK
	if resp.IsNew {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetCommunity(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get community", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommunityHandler) ListCommunities(c *gin.Context) {
	ctx := c.Request.Context()
	filter := types.NewCommunityFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		h.log.Error("Failed to bind query", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}
	if filter.OwnerID == "" {
		filter.OwnerID = types.GetOwnerID(ctx)
	}

	resp, err := h.service.ListCommunities(ctx, filter)
	if err != nil {
		h.log.Error("Failed to list communities", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommunityHandler) DeleteCommunity(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.service.DeleteCommunity(ctx, c.Param("id")); err != nil {
		h.log.Error("Failed to delete community", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "community deleted successfully"})
}

func (h *CommunityHandler) ActivateCommunity(c *gin.Context) {
	ctx := c.Request.Context()
	req := dto.ActivateCommunityRequest{
		OwnerID:     types.GetOwnerID(ctx),
		CommunityID: c.Param("id"),
	}
	// Source is only needed for first-time activation, so the body is optional.
	if c.Request.ContentLength > 0 {
		var body struct {
			Source string `json:"source"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			h.log.Error("Failed to bind JSON", "error", err)
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
		req.Source = body.Source
	}

	resp, err := h.membership.ActivateCommunity(ctx, &req)
	if err != nil {
		h.log.Error("Failed to activate community", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CommunityHandler) DeactivateCommunity(c *gin.Context) {
	ctx := c.Request.Context()
	req := dto.DeactivateCommunityRequest{
		OwnerID:     types.GetOwnerID(ctx),
		CommunityID: c.Param("id"),
	}

	resp, err := h.membership.DeactivateCommunity(ctx, &req)
	if err != nil {
		h.log.Error("Failed to deactivate community", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
