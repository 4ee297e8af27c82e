package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateTranslationCacheColumns(db); err != nil {
		return err
	}
	return nil
}

// migrateTranslationCacheColumns migrates legacy translation cache rows to the
// current layout: language codes stored lowercase and the full original_text
// column replaced by a bounded snippet. Safe to run multiple times since it
// only touches rows still carrying the legacy shape.
func migrateTranslationCacheColumns(db *gorm.DB) error {
	// Early deployments wrote language codes in the upstream provider's
	// uppercase wire format. Lookups are case-sensitive, so normalize.
	result := db.Exec(`
		UPDATE translation_caches
		SET source_lang = LOWER(source_lang),
		    target_lang = LOWER(target_lang)
		WHERE source_lang != LOWER(source_lang)
		   OR target_lang != LOWER(target_lang)
	`)
	if result.Error != nil {
		log.Printf("Warning: failed to lowercase cache language codes: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Normalized language codes on %d translation cache rows", result.RowsAffected)
	}

	// Check if the legacy full-text column exists
	if db.Migrator().HasColumn("translation_caches", "original_text") {
		log.Println("Migrating translation_caches: original_text -> original_text_snippet")

		result := db.Exec(`
			UPDATE translation_caches
			SET original_text_snippet = SUBSTR(original_text, 1, 1000)
			WHERE original_text_snippet IS NULL OR original_text_snippet = ''
		`)
		if result.Error != nil {
			log.Printf("Warning: failed to backfill snippet column: %v", result.Error)
		} else {
			log.Printf("Backfilled snippets on %d translation cache rows", result.RowsAffected)
		}

		if err := db.Migrator().DropColumn("translation_caches", "original_text"); err != nil {
			log.Printf("Warning: failed to drop legacy original_text column: %v", err)
		}
	}

	return nil
}
