package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dairyherd/internal/domain/models"
	"dairyherd/internal/server/middleware"
	"dairyherd/internal/service/registry"
)

// CattleHandler exposes herd CRUD endpoints.
type CattleHandler struct {
	svc    *registry.Service
	logger *zap.Logger
}

// NewCattleHandler constructs the cattle HTTP adapter.
func NewCattleHandler(svc *registry.Service, logger *zap.Logger) *CattleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CattleHandler{svc: svc, logger: logger}
}

// List returns the herd page visible to the caller.
func (h *CattleHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 20)
	filter := models.CattleFilter{
		Status: models.CattleStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	cattle, total, err := h.svc.List(c.Request.Context(), middleware.ActorFrom(c), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cattle":     cattle,
		"pagination": newPagination(total, page, limit),
	})
}

// Get returns one cattle.
func (h *CattleHandler) Get(c *gin.Context) {
	cattle, err := h.svc.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cattle": cattle})
}

// Create registers a new cattle.
func (h *CattleHandler) Create(c *gin.Context) {
	var req struct {
		TagNumber      string `json:"tagNumber" binding:"required"`
		Name           string `json:"name" binding:"required"`
		Breed          string `json:"breed"`
		Gender         string `json:"gender" binding:"required"`
		DateOfBirth    string `json:"dateOfBirth" binding:"required"`
		ParentID       string `json:"parentId"`
		AssignedUserID string `json:"assignedUserId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateOfBirth"})
		return
	}

	cattle, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c), registry.CreateInput{
		TagNumber:      req.TagNumber,
		Name:           req.Name,
		Breed:          req.Breed,
		Gender:         models.Gender(req.Gender),
		DateOfBirth:    dob,
		ParentID:       req.ParentID,
		AssignedUserID: req.AssignedUserID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"cattle": cattle})
}

// Update changes the mutable details of one cattle.
func (h *CattleHandler) Update(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		Breed          string `json:"breed"`
		Status         string `json:"status"`
		PhotoURL       string `json:"photoUrl"`
		AssignedUserID string `json:"assignedUserId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cattle, err := h.svc.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), registry.UpdateInput{
		Name:           req.Name,
		Breed:          req.Breed,
		Status:         models.CattleStatus(req.Status),
		PhotoURL:       req.PhotoURL,
		AssignedUserID: req.AssignedUserID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cattle": cattle})
}

// Delete tombstones one cattle as deceased.
func (h *CattleHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cattle marked as deceased"})
}

// Assign hands one cattle to a user.
func (h *CattleHandler) Assign(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	cattle, err := h.svc.Assign(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cattle": cattle})
}
