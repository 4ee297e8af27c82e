package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credinta-blog/backend/internal/services"
)

type TranslateHandler struct {
	orchestrator *services.TranslationOrchestrator
}

func NewTranslateHandler(orchestrator *services.TranslationOrchestrator) *TranslateHandler {
	return &TranslateHandler{orchestrator: orchestrator}
}

// translateRequest accepts text as either a single string or an array of
// strings; the response mirrors the request shape.
type translateRequest struct {
	Text       interface{} `json:"text"`
	TargetLang string      `json:"targetLang"`
	SourceLang string      `json:"sourceLang"`
	AutoDetect bool        `json:"autoDetect"`
}

// Translate handles POST /api/translate
func (h *TranslateHandler) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	texts, scalar, ok := coerceTexts(req.Text)
	if !ok || len(texts) == 0 || (scalar && texts[0] == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	if req.TargetLang == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetLang is required"})
		return
	}
	if !h.orchestrator.IsConfigured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "translation API key not configured"})
		return
	}

	outcome, err := h.orchestrator.Translate(c.Request.Context(), texts, req.TargetLang, req.SourceLang, req.AutoDetect)
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(upstream.StatusCode, gin.H{"error": "translation failed", "details": upstream.Body})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "translation failed", "details": err.Error()})
		return
	}

	resp := gin.H{
		"fromCache":       outcome.FromCache,
		"cachedCount":     outcome.CachedCount,
		"translatedCount": outcome.TranslatedCount,
	}
	if scalar {
		resp["translatedText"] = outcome.Texts[0]
	} else {
		resp["translatedText"] = outcome.Texts
	}
	if outcome.DetectedSourceLang != "" {
		resp["detectedSourceLang"] = outcome.DetectedSourceLang
	}
	c.JSON(http.StatusOK, resp)
}

// Health handles GET /api/translate, a config probe for the frontend.
func (h *TranslateHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"configured":   h.orchestrator.IsConfigured(),
		"cacheEnabled": h.orchestrator.CacheEnabled(),
	})
}

// coerceTexts normalizes the scalar-or-array text field into a slice,
// remembering which shape the caller used.
func coerceTexts(raw interface{}) (texts []string, scalar bool, ok bool) {
	switch v := raw.(type) {
	case string:
		return []string{v}, true, true
	case []interface{}:
		texts = make([]string, 0, len(v))
		for _, item := range v {
			s, isString := item.(string)
			if !isString {
				return nil, false, false
			}
			texts = append(texts, s)
		}
		return texts, false, true
	default:
		return nil, false, false
	}
}
