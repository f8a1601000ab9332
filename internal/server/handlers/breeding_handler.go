package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dairyherd/internal/domain/models"
	"dairyherd/internal/server/middleware"
	"dairyherd/internal/service/breeding"
)

// BreedingHandler exposes the breeding lifecycle endpoints.
type BreedingHandler struct {
	svc    *breeding.Service
	logger *zap.Logger
}

// NewBreedingHandler constructs the breeding HTTP adapter.
func NewBreedingHandler(svc *breeding.Service, logger *zap.Logger) *BreedingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BreedingHandler{svc: svc, logger: logger}
}

// RecordSemination opens a new reproductive thread for a dam.
func (h *BreedingHandler) RecordSemination(c *gin.Context) {
	var req struct {
		CattleID       string `json:"cattleId" binding:"required"`
		SeminationDate string `json:"seminationDate" binding:"required"`
		Notes          string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := parseDate(req.SeminationDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seminationDate"})
		return
	}

	rec, err := h.svc.RecordSemination(c.Request.Context(), middleware.ActorFrom(c), breeding.RecordSeminationInput{
		CattleID:       req.CattleID,
		SeminationDate: date,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"seminationRecord": rec})
}

// CheckPregnancy records the 15th-day check outcome.
func (h *BreedingHandler) CheckPregnancy(c *gin.Context) {
	var req struct {
		IsPregnant *bool  `json:"isPregnant" binding:"required"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isPregnant is required"})
		return
	}

	rec, pregnancy, err := h.svc.CheckPregnancy(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), breeding.CheckPregnancyInput{
		IsPregnant: *req.IsPregnant,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := gin.H{"seminationRecord": rec}
	if pregnancy != nil {
		resp["pregnancyRecord"] = pregnancy
	}
	c.JSON(http.StatusOK, resp)
}

// SeminationHistory lists a cattle's semination records.
func (h *BreedingHandler) SeminationHistory(c *gin.Context) {
	recs, err := h.svc.SeminationHistory(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seminationRecords": recs})
}

// PendingChecks lists due, unresolved checks visible to the caller.
func (h *BreedingHandler) PendingChecks(c *gin.Context) {
	recs, err := h.svc.PendingChecks(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pendingChecks": recs})
}

// PregnancyRecords lists a cattle's pregnancy records.
func (h *BreedingHandler) PregnancyRecords(c *gin.Context) {
	recs, err := h.svc.PregnancyRecords(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pregnancyRecords": recs})
}

// RecordDelivery closes a pregnancy and registers the calf.
func (h *BreedingHandler) RecordDelivery(c *gin.Context) {
	var req struct {
		ActualDeliveryDate string `json:"actualDeliveryDate" binding:"required"`
		CalfTagNumber      string `json:"calfTagNumber" binding:"required"`
		CalfName           string `json:"calfName" binding:"required"`
		CalfBreed          string `json:"calfBreed"`
		CalfGender         string `json:"calfGender" binding:"required"`
		Notes              string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := parseDate(req.ActualDeliveryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid actualDeliveryDate"})
		return
	}

	rec, calf, err := h.svc.RecordDelivery(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), breeding.RecordDeliveryInput{
		ActualDeliveryDate: date,
		Calf: models.CalfAttributes{
			TagNumber: req.CalfTagNumber,
			Name:      req.CalfName,
			Breed:     req.CalfBreed,
			Gender:    models.Gender(req.CalfGender),
		},
		Notes: req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pregnancyRecord": rec, "calf": calf})
}

// MarkSeparation ends the calf's dependency period.
func (h *BreedingHandler) MarkSeparation(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	// An empty body means separation with no notes.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.svc.MarkSeparation(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Notes)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pregnancyRecord": rec})
}

// Stats summarizes the pregnancy pipeline for the caller's scope.
func (h *BreedingHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
