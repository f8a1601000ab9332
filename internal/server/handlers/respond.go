package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dairyherd/internal/domain/apperr"
)

// pagination is the list envelope shared by paged endpoints.
type pagination struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Pages int64 `json:"pages"`
}

func newPagination(total, page, limit int64) pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int64(math.Ceil(float64(total) / float64(limit))),
	}
}

func pageParams(c *gin.Context, defaultLimit int64) (int64, int64) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	return page, limit
}

// writeError translates domain errors to HTTP responses. Anything
// outside the taxonomy is a 500 and gets logged.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Kind {
		case apperr.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": domainErr.Msg})
		case apperr.KindForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": domainErr.Msg})
		case apperr.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{"error": domainErr.Msg})
		case apperr.KindTooEarly:
			c.JSON(http.StatusConflict, gin.H{
				"error":        domainErr.Msg,
				"eligibleDate": domainErr.EligibleAt.Format(time.RFC3339),
			})
		case apperr.KindInvalidState, apperr.KindConflict:
			c.JSON(http.StatusConflict, gin.H{"error": domainErr.Msg})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}

	if logger != nil {
		logger.Error("request failed", zap.Error(err))
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
}

// parseDate accepts plain dates or RFC3339 timestamps.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// dateRangeParams reads the optional startDate/endDate query pair. The
// filter applies only when both bounds are present. On a malformed
// value it writes the 400 itself and reports !ok.
func dateRangeParams(c *gin.Context) (from, to *time.Time, ok bool) {
	start, end := c.Query("startDate"), c.Query("endDate")
	if start == "" || end == "" {
		return nil, nil, true
	}

	fromVal, err := parseDate(start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate"})
		return nil, nil, false
	}
	toVal, err := parseDate(end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
		return nil, nil, false
	}
	return &fromVal, &toVal, true
}
