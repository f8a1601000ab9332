package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dairyherd/internal/server/middleware"
	"dairyherd/internal/service/feeding"
)

// FeedingHandler exposes the feeding log endpoints.
type FeedingHandler struct {
	svc    *feeding.Service
	logger *zap.Logger
}

// NewFeedingHandler constructs the feeding HTTP adapter.
func NewFeedingHandler(svc *feeding.Service, logger *zap.Logger) *FeedingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedingHandler{svc: svc, logger: logger}
}

type feedingRequest struct {
	CattleID   string  `json:"cattleId" binding:"required"`
	FeedType   string  `json:"feedType" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
	WaterGiven bool    `json:"waterGiven"`
	Timestamp  string  `json:"timestamp"`
}

// Record appends one feeding event.
func (h *FeedingHandler) Record(c *gin.Context) {
	var req feedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := feeding.RecordInput{
		CattleID:   req.CattleID,
		FeedType:   req.FeedType,
		Quantity:   req.Quantity,
		WaterGiven: req.WaterGiven,
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

	c.JSON(http.StatusCreated, gin.H{"feedingRecord": rec})
}

// BatchRecord appends the same feeding event for several cattle.
func (h *FeedingHandler) BatchRecord(c *gin.Context) {
	var req struct {
		CattleIDs  []string `json:"cattleIds" binding:"required"`
		FeedType   string   `json:"feedType" binding:"required"`
		Quantity   float64  `json:"quantity" binding:"required"`
		WaterGiven bool     `json:"waterGiven"`
		Timestamp  string   `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := feeding.BatchInput{
		CattleIDs:  req.CattleIDs,
		FeedType:   req.FeedType,
		Quantity:   req.Quantity,
		WaterGiven: req.WaterGiven,
	}
	if req.Timestamp != "" {
		ts, err := parseDate(req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp"})
			return
		}
		in.Timestamp = ts
	}

	recs, err := h.svc.BatchRecord(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"feedingRecords": recs})
}

// History lists a cattle's feeding records.
func (h *FeedingHandler) History(c *gin.Context) {
	page, limit := pageParams(c, 20)

	recs, total, err := h.svc.History(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), page, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedingRecords": recs,
		"pagination":     newPagination(total, page, limit),
	})
}

// Stats summarizes a cattle's feeding history.
func (h *FeedingHandler) Stats(c *gin.Context) {
	from, to, ok := dateRangeParams(c)
	if !ok {
		return
	}

	stats, recent, err := h.svc.Stats(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats, "recentFeedings": recent})
}
