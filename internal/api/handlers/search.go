package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/credinta-blog/backend/internal/services"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles GET /api/search?q=...&limit=...&lang=...
// All query outcomes including zero results return 200; a 500 only means the
// database is unavailable.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")

	limit := defaultSearchLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	lang := c.DefaultQuery("lang", services.DefaultOriginLang)

	outcome, err := h.search.Search(query, limit, lang)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	resp := gin.H{
		"success":  true,
		"results":  outcome.Results,
		"total":    outcome.Total,
		"query":    outcome.Query,
		"language": outcome.Language,
	}
	if outcome.Results == nil {
		resp["results"] = []interface{}{}
	}
	if len(outcome.SearchTerms) > 0 {
		resp["searchTerms"] = outcome.SearchTerms
	}
	if outcome.Message != "" {
		resp["message"] = outcome.Message
	}
	c.JSON(http.StatusOK, resp)
}
