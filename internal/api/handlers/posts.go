package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credinta-blog/backend/internal/database"
	"github.com/credinta-blog/backend/internal/metrics"
	"github.com/credinta-blog/backend/internal/models"
)

const defaultPostsPageSize = 20

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// ListPosts returns published posts, newest first, paged via ?page=&limit=.
func (h *PostHandler) ListPosts(c *gin.Context) {
	db := database.GetDB()

	page := 1
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	limit := defaultPostsPageSize
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var total int64
	if err := db.Model(&models.Post{}).Where("published = ?", true).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var posts []models.Post
	err := db.
		Where("published = ?", true).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetPost returns a single published post by slug.
func (h *PostHandler) GetPost(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}

	db := database.GetDB()
	var post models.Post
	err := db.Where("slug = ? AND published = ?", slug, true).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, post)
}

// UpsertPost creates or updates a post (admin only). New posts get a
// generated id; an existing id updates the row in place.
func (h *PostHandler) UpsertPost(c *gin.Context) {
	var post models.Post
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if post.Slug == "" || post.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug and title are required"})
		return
	}

	db := database.GetDB()
	created := post.ID == ""
	if created {
		post.ID = uuid.NewString()
	}

	if err := db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.UpdateContentMetrics(db)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, post)
}
