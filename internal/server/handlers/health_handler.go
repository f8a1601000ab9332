package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dairyherd/internal/domain/models"
	"dairyherd/internal/server/middleware"
	"dairyherd/internal/service/health"
)

// HealthHandler exposes the health log endpoints.
type HealthHandler struct {
	svc    *health.Service
	logger *zap.Logger
}

// NewHealthHandler constructs the health HTTP adapter.
func NewHealthHandler(svc *health.Service, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{svc: svc, logger: logger}
}

// Record appends one health event.
func (h *HealthHandler) Record(c *gin.Context) {
	var req struct {
		CattleID    string `json:"cattleId" binding:"required"`
		RecordType  string `json:"recordType" binding:"required"`
		Description string `json:"description" binding:"required"`
		Medication  string `json:"medication"`
		Dosage      string `json:"dosage"`
		Timestamp   string `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := health.RecordInput{
		CattleID:    req.CattleID,
		RecordType:  models.HealthRecordType(req.RecordType),
		Description: req.Description,
		Medication:  req.Medication,
		Dosage:      req.Dosage,
	}
	if req.Timestamp != "" {
		ts, err := parseDate(req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp"})
			return
		}
		in.Timestamp = ts
	}

	rec, err := h.svc.Record(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"healthRecord": rec})
}

// History lists a cattle's health records, optionally narrowed to one
// record type.
func (h *HealthHandler) History(c *gin.Context) {
	page, limit := pageParams(c, 20)
	recordType := models.HealthRecordType(c.Query("recordType"))

	recs, total, err := h.svc.History(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), recordType, page, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"healthRecords": recs,
		"pagination":    newPagination(total, page, limit),
	})
}

// Stats summarizes a cattle's health history by record type.
func (h *HealthHandler) Stats(c *gin.Context) {
	from, to, ok := dateRangeParams(c)
	if !ok {
		return
	}

	stats, recent, err := h.svc.Stats(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats, "recentRecords": recent})
}

// Alerts lists the recent disease records visible to the caller.
func (h *HealthHandler) Alerts(c *gin.Context) {
	recs, err := h.svc.Alerts(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"healthAlerts": recs})
}
