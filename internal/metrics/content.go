package metrics

import (
	"log"

	"gorm.io/gorm"

	"github.com/credinta-blog/backend/internal/models"
)

// UpdateContentMetrics queries the database and updates content-related
// Prometheus gauges. Call this after content changes or periodically.
func UpdateContentMetrics(db *gorm.DB) {
	if db == nil {
		return
	}

	// Translation cache size
	var cacheEntries int64
	if err := db.Model(&models.TranslationCache{}).Count(&cacheEntries).Error; err != nil {
		log.Printf("Metrics: failed to count translation cache entries: %v", err)
	} else {
		TranslationCacheEntries.Set(float64(cacheEntries))
	}

	// Cache entries by target language
	type langCount struct {
		TargetLang string
		Entries    int64
	}
	var langCounts []langCount
	if err := db.Model(&models.TranslationCache{}).
		Select("target_lang, COUNT(*) as entries").
		Group("target_lang").
		Scan(&langCounts).Error; err != nil {
		log.Printf("Metrics: failed to count cache entries by language: %v", err)
	} else {
		for _, lc := range langCounts {
			TranslationCacheEntriesByLang.WithLabelValues(lc.TargetLang).Set(float64(lc.Entries))
		}
	}

	// Published posts
	var published int64
	if err := db.Model(&models.Post{}).Where("published = ?", true).Count(&published).Error; err != nil {
		log.Printf("Metrics: failed to count published posts: %v", err)
	} else {
		PublishedPostsTotal.Set(float64(published))
	}
}
