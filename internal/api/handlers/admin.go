package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credinta-blog/backend/internal/services"
)

type AdminHandler struct {
	cache   *services.TranslationCacheService
	prewarm *services.PrewarmWorker
}

func NewAdminHandler(cache *services.TranslationCacheService, prewarm *services.PrewarmWorker) *AdminHandler {
	return &AdminHandler{
		cache:   cache,
		prewarm: prewarm,
	}
}

// GetCacheStats returns translation cache statistics
// GET /api/admin/cache/stats
func (h *AdminHandler) GetCacheStats(c *gin.Context) {
	total, byPair := h.cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"total_entries":   total,
		"entries_by_pair": byPair,
		"cache_enabled":   h.cache.Enabled(),
	})
}

// TriggerPrewarm runs one pre-warm batch in the background
// POST /api/admin/prewarm
func (h *AdminHandler) TriggerPrewarm(c *gin.Context) {
	if h.prewarm == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pre-warm worker not available"})
		return
	}

	// Run in background with a fresh context (not tied to the HTTP request):
	// the request context is cancelled as soon as we return 202
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := h.prewarm.RunOnce(ctx); err != nil {
			log.Printf("Admin-triggered pre-warm failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "pre-warm run started",
		"status":  "running",
	})
}

// GetPrewarmStatus returns the pre-warm worker status
// GET /api/admin/prewarm/status
func (h *AdminHandler) GetPrewarmStatus(c *gin.Context) {
	if h.prewarm == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pre-warm worker not available"})
		return
	}
	c.JSON(http.StatusOK, h.prewarm.GetStatus())
}
