package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dairyherd/internal/server/middleware"
	"dairyherd/internal/service/organizations"
)

// OrganizationHandler exposes tenant management endpoints.
type OrganizationHandler struct {
	svc    *organizations.Service
	logger *zap.Logger
}

// NewOrganizationHandler constructs the organization HTTP adapter.
func NewOrganizationHandler(svc *organizations.Service, logger *zap.Logger) *OrganizationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationHandler{svc: svc, logger: logger}
}

// Create registers a new organization.
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	org, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c), req.Name)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"organization": org})
}

// List returns a page of organizations.
func (h *OrganizationHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 10)

	orgs, total, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
		"pagination":    newPagination(total, page, limit),
	})
}

// Get returns one organization.
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}
