package models

import (
	"time"
)

// Post is a blog post. Content is authored in the origin language (the plain
// columns); the `_en` columns hold pre-stored English translations when the
// author provided them. Other display languages are served through the
// translation cache.
type Post struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id" gorm:"primaryKey"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"`
	Title     string    `json:"title" gorm:"not null;index"`
	TitleEn   string    `json:"title_en" gorm:"column:title_en"`
	Excerpt   string    `json:"excerpt"`
	ExcerptEn string    `json:"excerpt_en" gorm:"column:excerpt_en"`
	Content   string    `json:"content"`
	ContentEn string    `json:"content_en" gorm:"column:content_en"`
	ImageURL  string    `json:"image_url"`
	Published bool      `json:"published" gorm:"index"`
}

// PostSearchResult wraps a post with its relevance score for one search call.
// It is derived per query and never persisted.
type PostSearchResult struct {
	Post
	RelevanceScore int `json:"relevance_score" gorm:"-"`
}
