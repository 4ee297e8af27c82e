package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/credinta-blog/backend/internal/metrics"
	"github.com/credinta-blog/backend/internal/models"
)

// TranslationCacheService is the durable store mapping
// (hash of source text, source language, target language) to a translation.
// It is written only by the translation orchestrator and read by both the
// orchestrator and the search engine.
type TranslationCacheService struct {
	db *gorm.DB
}

// CacheMatch is one row returned by the reverse-lookup scan.
type CacheMatch struct {
	OriginalSnippet string
	TranslatedText  string
}

// NewTranslationCacheService creates a new translation cache service
func NewTranslationCacheService(db *gorm.DB) *TranslationCacheService {
	return &TranslationCacheService{db: db}
}

// Enabled reports whether the cache has a backing store.
func (s *TranslationCacheService) Enabled() bool {
	return s.db != nil
}

// Get retrieves a cached translation for the exact (text, sourceLang,
// targetLang) triple. The hash is computed over the full untruncated text so
// a Put after a missed Get is always found by the next identical Get.
// Storage errors are swallowed and reported as a miss: the read path must
// never fail the caller, who always has the upstream call as a fallback.
func (s *TranslationCacheService) Get(text, sourceLang, targetLang string) (string, bool) {
	if s.db == nil {
		return "", false
	}

	hash := hashText(text)
	sourceLang = NormalizeLang(sourceLang)
	targetLang = NormalizeLang(targetLang)

	var cached models.TranslationCache
	err := s.db.Where("original_text_hash = ? AND source_lang = ? AND target_lang = ?",
		hash, sourceLang, targetLang).First(&cached).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			infoLog("Cache read failed, treating as miss: %v", err)
		}
		metrics.TranslationCacheMisses.Inc()
		return "", false
	}

	metrics.TranslationCacheHits.Inc()
	debugLog("Cache hit for hash=%s %s->%s", hash[:16], sourceLang, targetLang)
	return cached.TranslatedText, true
}

// Put stores a translation keyed by the triple. The original text is hashed
// in full but persisted only as a bounded snippet. Upsert semantics: a write
// for an existing triple overwrites the prior translation and snippet.
// Last-write-wins is safe because translations for a fixed triple are
// deterministic content.
func (s *TranslationCacheService) Put(originalText, translatedText, sourceLang, targetLang string) error {
	if s.db == nil {
		return nil
	}

	cached := models.TranslationCache{
		OriginalTextHash:    hashText(originalText),
		SourceLang:          NormalizeLang(sourceLang),
		TargetLang:          NormalizeLang(targetLang),
		OriginalTextSnippet: truncateRunes(originalText, models.SnippetMaxLen),
		TranslatedText:      translatedText,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "original_text_hash"}, {Name: "source_lang"}, {Name: "target_lang"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"translated_text", "original_text_snippet", "updated_at",
		}),
	}).Create(&cached).Error
}

// FindByTranslatedSubstring scans cached translations for targetLang whose
// translated text contains needle (case-insensitive), returning up to limit
// matches. This is a linear scan, acceptable because it backs the
// best-effort search-enhancement path, not a latency-critical one.
// Storage errors degrade to an empty result.
func (s *TranslationCacheService) FindByTranslatedSubstring(targetLang, needle string, limit int) []CacheMatch {
	if s.db == nil || needle == "" {
		return nil
	}

	pattern := "%" + escapeLike(strings.ToLower(needle)) + "%"

	var rows []models.TranslationCache
	err := s.db.
		Where("target_lang = ?", NormalizeLang(targetLang)).
		Where(`LOWER(translated_text) LIKE ? ESCAPE '\'`, pattern).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		infoLog("Cache reverse lookup failed for %q: %v", needle, err)
		return nil
	}

	matches := make([]CacheMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, CacheMatch{
			OriginalSnippet: row.OriginalTextSnippet,
			TranslatedText:  row.TranslatedText,
		})
	}
	return matches
}

// Stats returns the total entry count and a per language-pair breakdown.
func (s *TranslationCacheService) Stats() (int64, map[string]int64) {
	if s.db == nil {
		return 0, nil
	}

	var total int64
	s.db.Model(&models.TranslationCache{}).Count(&total)

	type pairCount struct {
		SourceLang string
		TargetLang string
		Entries    int64
	}
	var pairs []pairCount
	s.db.Model(&models.TranslationCache{}).
		Select("source_lang, target_lang, COUNT(*) as entries").
		Group("source_lang, target_lang").
		Scan(&pairs)

	byPair := make(map[string]int64, len(pairs))
	for _, p := range pairs {
		byPair[p.SourceLang+"->"+p.TargetLang] = p.Entries
	}
	return total, byPair
}

// hashText creates a SHA256 hash of the text for efficient lookups.
// Pure function of the text bytes: no seed, stable across restarts and
// deployments, otherwise previously cached entries become unreachable.
func hashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// truncateRunes truncates text to maxLen runes.
// Rune count instead of byte count so multi-byte text is never split mid-character.
func truncateRunes(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}

// escapeLike escapes LIKE metacharacters so a needle containing % or _ is
// matched literally instead of being interpreted as a pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
