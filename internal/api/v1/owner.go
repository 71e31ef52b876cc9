package v1

import (
	"net/http"

	"github.com/gatherly/gatherly/internal/api/dto"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/logger"
	"github.com/gatherly/gatherly/internal/service"
	"github.com/gin-gonic/gin"
)

type OwnerHandler struct {
	service    service.OwnerService
	membership service.MembershipService
	log        *logger.Logger
}

func NewOwnerHandler(service service.OwnerService, membership service.MembershipService, log *logger.Logger) *OwnerHandler {
	return &OwnerHandler{service: service, membership: membership, log: log}
}

func (h *OwnerHandler) CreateOwner(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateOwner(ctx, &req)
	if err != nil {
		h.log.Error("Failed to create owner", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *OwnerHandler) GetOwner(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetOwner(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get owner", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OwnerHandler) SetDefaultCard(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.SetDefaultCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetDefaultCard(ctx, c.Param("id"), &req)
	if err != nil {
		h.log.Error("Failed to set default card", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OwnerHandler) GetUpcomingInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	inv, err := h.membership.GetUpcomingInvoice(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get upcoming invoice", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
